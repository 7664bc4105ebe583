package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/openchamber-ai/openchamber/internal/logging"
)

// ErrMalformed indicates opencode.json could not be parsed.
var ErrMalformed = errors.New("config: malformed opencode.json")

// Store reads and writes the consolidated opencode.json file.
type Store struct {
	paths *Paths
}

// NewStore creates a store bound to the given paths.
func NewStore(paths *Paths) *Store {
	return &Store{paths: paths}
}

// Read returns the parsed config object. A missing or empty file yields an
// empty object. JSONC comments are tolerated on read; they are stripped
// before parsing and are not preserved on write.
func (s *Store) Read() (map[string]any, error) {
	data, err := os.ReadFile(s.paths.File())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = jsonc.ToJSON(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}

// Write persists the config object, copying the previous revision to the
// backup path first. The backup is advisory: its failure is logged and
// never blocks the primary write.
func (s *Store) Write(cfg map[string]any) error {
	if err := os.MkdirAll(s.paths.Root, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	s.backup()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(s.paths.File(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	logging.Debug().Str("path", s.paths.File()).Msg("wrote config file")
	return nil
}

// backup copies the current config file to the backup path, overwriting any
// prior backup. Failures are swallowed on purpose.
func (s *Store) backup() {
	data, err := os.ReadFile(s.paths.File())
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Msg("config backup skipped")
		}
		return
	}

	if err := os.WriteFile(s.paths.BackupFile(), data, 0644); err != nil {
		logging.Warn().Err(err).Str("path", s.paths.BackupFile()).Msg("config backup failed")
		return
	}

	logging.Debug().Str("path", s.paths.BackupFile()).Msg("created config backup")
}

// Section returns the entity map under kind ("agent" or "command"), or nil
// when the section is absent or not an object.
func Section(cfg map[string]any, kind string) map[string]any {
	section, _ := cfg[kind].(map[string]any)
	return section
}

// Entry returns the field map for name within kind's section, or nil when
// the entry is absent or not an object.
func Entry(cfg map[string]any, kind, name string) map[string]any {
	entry, _ := Section(cfg, kind)[name].(map[string]any)
	return entry
}

// SetEntry upserts name's field map under kind, creating or replacing the
// section as needed.
func SetEntry(cfg map[string]any, kind, name string, fields map[string]any) {
	section, ok := cfg[kind].(map[string]any)
	if !ok {
		section = map[string]any{}
		cfg[kind] = section
	}
	section[name] = fields
}

// RemoveEntry deletes name from kind's section, reporting whether it was
// present.
func RemoveEntry(cfg map[string]any, kind, name string) bool {
	section, ok := cfg[kind].(map[string]any)
	if !ok {
		return false
	}
	if _, ok := section[name]; !ok {
		return false
	}
	delete(section, name)
	return true
}
