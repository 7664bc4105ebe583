package commands

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseFields turns key=value arguments into a field map. Values that parse
// as JSON are taken structurally (numbers, booleans, objects, arrays);
// anything else is a plain string. With allowRemoval, "key=" maps to a nil
// value, which the services treat as field removal.
func parseFields(args []string, allowRemoval bool) (map[string]any, error) {
	fields := make(map[string]any, len(args))

	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q (expected key=value)", arg)
		}

		if raw == "" && allowRemoval {
			fields[key] = nil
			continue
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		fields[key] = value
	}

	return fields, nil
}
