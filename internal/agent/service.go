package agent

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/openchamber-ai/openchamber/internal/config"
	"github.com/openchamber-ai/openchamber/internal/document"
	"github.com/openchamber-ai/openchamber/internal/logging"
	"github.com/openchamber-ai/openchamber/internal/promptref"
	"github.com/openchamber-ai/openchamber/pkg/types"
)

const (
	// bodyField is the frontmatter key that maps to the document body.
	bodyField   = "prompt"
	sectionKind = "agent"
)

// ErrExists indicates a create collided with an existing definition.
var ErrExists = errors.New("agent: already exists")

// Service exposes create/read-sources/update/delete for agents.
type Service struct {
	paths *config.Paths
	store *config.Store
	refs  promptref.Resolver
}

// NewService creates an agent service rooted at the given paths.
func NewService(paths *config.Paths) *Service {
	return &Service{
		paths: paths,
		store: config.NewStore(paths),
		refs:  promptref.Resolver{ConfigRoot: paths.Root},
	}
}

// Sources reports which stores define the named agent and the fields each
// populates. A non-empty document body is reported as the synthetic "prompt"
// field.
func (s *Service) Sources(name string) (*types.ConfigSources, error) {
	if err := s.paths.EnsurePaths(); err != nil {
		return nil, err
	}

	mdPath := s.paths.AgentPath(name)
	mdExists := false
	mdFields := []string{}

	doc, err := document.Read(mdPath)
	switch {
	case err == nil:
		mdExists = true
		mdFields = fieldNames(doc.Frontmatter)
		if strings.TrimSpace(doc.Body) != "" {
			mdFields = append(mdFields, bodyField)
		}
	case errors.Is(err, document.ErrNotFound):
	default:
		return nil, err
	}

	cfg, err := s.store.Read()
	if err != nil {
		return nil, err
	}

	_, sectionExists := config.Section(cfg, sectionKind)[name]
	jsonFields := fieldNames(config.Entry(cfg, sectionKind, name))

	sources := &types.ConfigSources{
		MD: types.SourceInfo{
			Exists: mdExists,
			Fields: mdFields,
		},
		JSON: types.SourceInfo{
			Exists: sectionExists,
			Path:   s.paths.File(),
			Fields: jsonFields,
		},
	}
	if mdExists {
		sources.MD.Path = mdPath
	}
	return sources, nil
}

// Create writes a new agent document. It fails with ErrExists when a
// document or a config section already owns the name; the document form is
// the default target for new agents.
func (s *Service) Create(name string, fields map[string]any) error {
	if err := s.paths.EnsurePaths(); err != nil {
		return err
	}

	mdPath := s.paths.AgentPath(name)
	if _, err := os.Stat(mdPath); err == nil {
		return fmt.Errorf("%w: agent %q has a document at %s", ErrExists, name, mdPath)
	}

	cfg, err := s.store.Read()
	if err != nil {
		return err
	}
	if _, ok := config.Section(cfg, sectionKind)[name]; ok {
		return fmt.Errorf("%w: agent %q has an entry in %s", ErrExists, name, s.paths.File())
	}

	frontmatter := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != bodyField {
			frontmatter[k] = v
		}
	}
	body, _ := fields[bodyField].(string)

	if err := document.Write(mdPath, &document.Document{Frontmatter: frontmatter, Body: body}); err != nil {
		return err
	}

	logging.Info().Str("agent", name).Str("path", mdPath).Msg("created agent")
	return nil
}

// Update applies field-level updates, routing each field to the store that
// currently owns it. A nil value removes the field from both stores. All
// document-bound changes are committed in one document write and all
// config-bound changes in one config write, after every field is routed.
func (s *Service) Update(name string, updates map[string]any) error {
	if err := s.paths.EnsurePaths(); err != nil {
		return err
	}

	mdPath := s.paths.AgentPath(name)
	mdExists := true
	doc, err := document.Read(mdPath)
	if errors.Is(err, document.ErrNotFound) {
		mdExists, doc, err = false, nil, nil
	}
	if err != nil {
		return err
	}

	cfg, err := s.store.Read()
	if err != nil {
		return err
	}
	entry := cloneEntry(config.Entry(cfg, sectionKind, name))
	hadJSONFields := len(entry) > 0

	mdModified := false
	jsonModified := false

	for _, field := range sortedKeys(updates) {
		value := updates[field]

		// A nil payload removes the field wherever it is defined.
		if value == nil {
			if mdExists {
				if _, ok := doc.Frontmatter[field]; ok {
					delete(doc.Frontmatter, field)
					mdModified = true
				}
			}
			if _, ok := entry[field]; ok {
				delete(entry, field)
				jsonModified = true
			}
			continue
		}

		if field == bodyField {
			text, _ := value.(string)

			if mdExists {
				doc.Body = text
				mdModified = true
				continue
			}

			if ref, ok := entry[bodyField].(string); ok && promptref.IsReference(ref) {
				path, err := s.refs.ResolvePath(ref)
				if err != nil {
					return fmt.Errorf("agent %q: %w", name, err)
				}
				if err := promptref.WriteContent(path, text); err != nil {
					return err
				}
				continue
			}

			entry[bodyField] = text
			jsonModified = true
			continue
		}

		inMD := false
		if mdExists {
			_, inMD = doc.Frontmatter[field]
		}
		_, inJSON := entry[field]

		switch {
		case inMD:
			doc.Frontmatter[field] = value
			mdModified = true
		case inJSON:
			entry[field] = value
			jsonModified = true
		case mdExists && len(entry) > 0:
			// Both stores populated: the config section wins for new fields.
			entry[field] = value
			jsonModified = true
		case mdExists:
			doc.Frontmatter[field] = value
			mdModified = true
		default:
			entry[field] = value
			jsonModified = true
		}
	}

	if mdModified {
		if err := document.Write(mdPath, doc); err != nil {
			return err
		}
	}

	// Never create a config section for an agent living exclusively in its
	// document.
	if jsonModified && mdExists && !hadJSONFields {
		jsonModified = false
	}

	if jsonModified {
		config.SetEntry(cfg, sectionKind, name, entry)
		if err := s.store.Write(cfg); err != nil {
			return err
		}
	}

	logging.Info().
		Str("agent", name).
		Bool("md", mdModified).
		Bool("json", jsonModified).
		Msg("updated agent")
	return nil
}

// Delete removes every definition owned by name: the document, the config
// section entry, or both. When neither exists the name is treated as a
// built-in agent and a {disable: true} entry is written instead, so the call
// never fails for an unowned name.
func (s *Service) Delete(name string) error {
	deleted := false

	mdPath := s.paths.AgentPath(name)
	if err := os.Remove(mdPath); err == nil {
		logging.Info().Str("agent", name).Str("path", mdPath).Msg("deleted agent document")
		deleted = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("delete agent document: %w", err)
	}

	cfg, err := s.store.Read()
	if err != nil {
		return err
	}
	if config.RemoveEntry(cfg, sectionKind, name) {
		if err := s.store.Write(cfg); err != nil {
			return err
		}
		logging.Info().Str("agent", name).Msg("removed agent config entry")
		deleted = true
	}

	if !deleted {
		config.SetEntry(cfg, sectionKind, name, map[string]any{"disable": true})
		if err := s.store.Write(cfg); err != nil {
			return err
		}
		logging.Info().Str("agent", name).Msg("disabled built-in agent")
	}

	return nil
}

// Definition names an agent and the stores that define it.
type Definition struct {
	Name     string `json:"name"`
	Document bool   `json:"document"`
	Section  bool   `json:"section"`
}

// List returns every agent with a user-owned definition, sorted by name.
func (s *Service) List() ([]Definition, error) {
	byName := map[string]*Definition{}

	entries, err := os.ReadDir(s.paths.AgentDir())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("list agent documents: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		byName[name] = &Definition{Name: name, Document: true}
	}

	cfg, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	for name := range config.Section(cfg, sectionKind) {
		def, ok := byName[name]
		if !ok {
			def = &Definition{Name: name}
			byName[name] = def
		}
		def.Section = true
	}

	defs := make([]Definition, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, *def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// fieldNames returns the sorted keys of a field map.
func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneEntry(entry map[string]any) map[string]any {
	cloned := make(map[string]any, len(entry))
	for k, v := range entry {
		cloned[k] = v
	}
	return cloned
}
