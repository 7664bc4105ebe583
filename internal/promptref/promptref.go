// Package promptref handles {file:...} references: sentinel values that
// point a config-section field at an external text file instead of holding
// the content inline. Only config-section values are ever references; a
// document body is always literal.
package promptref

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openchamber-ai/openchamber/internal/logging"
)

var pattern = regexp.MustCompile(`(?i)^\{file:(.+)\}$`)

// ErrInvalidReference indicates a reference that yields no usable path.
var ErrInvalidReference = errors.New("promptref: invalid file reference")

// IsReference reports whether value is a {file:...} reference. Matching is
// case-insensitive and ignores surrounding whitespace.
func IsReference(value string) bool {
	return pattern.MatchString(strings.TrimSpace(value))
}

// Resolver resolves reference targets against the opencode config root.
type Resolver struct {
	ConfigRoot string
}

// ResolvePath extracts the target path from a reference. Relative targets,
// with or without a ./ prefix, resolve against the config root; absolute
// targets pass through unchanged.
func (r Resolver) ResolvePath(reference string) (string, error) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(reference))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
	}

	target := strings.TrimSpace(m[1])
	if target == "" {
		return "", fmt.Errorf("%w: empty path in %q", ErrInvalidReference, reference)
	}

	switch {
	case strings.HasPrefix(target, "./"):
		return filepath.Join(r.ConfigRoot, target[2:]), nil
	case filepath.IsAbs(target):
		return target, nil
	default:
		return filepath.Join(r.ConfigRoot, target), nil
	}
}

// WriteContent replaces the referenced file's content, creating parent
// directories as needed.
func WriteContent(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create prompt file dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write prompt file: %w", err)
	}
	logging.Info().Str("path", path).Msg("updated prompt file")
	return nil
}
