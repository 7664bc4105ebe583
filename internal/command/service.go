package command

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
	bodyField   = "template"
	sectionKind = "command"
)

var (
	// ErrExists indicates a create collided with an existing definition.
	ErrExists = errors.New("command: already exists")
	// ErrNotFound indicates no definition exists at any scope or store.
	ErrNotFound = errors.New("command: not found")
)

// Service exposes create/read-sources/update/delete for commands, scoped to
// the user-global config root and an optional project working directory.
type Service struct {
	paths *config.Paths
	store *config.Store
	refs  promptref.Resolver
}

// NewService creates a command service rooted at the given paths.
func NewService(paths *config.Paths) *Service {
	return &Service{
		paths: paths,
		store: config.NewStore(paths),
		refs:  promptref.Resolver{ConfigRoot: paths.Root},
	}
}

// Sources reports which stores define the named command, which fields each
// populates, and the per-scope document locations. A non-empty document body
// is reported as the synthetic "template" field.
func (s *Service) Sources(name, workingDir string) (*types.ConfigSources, error) {
	if err := s.paths.EnsurePaths(); err != nil {
		return nil, err
	}

	projectMD := &types.MDLocation{}
	if workingDir != "" {
		projectMD.Path = config.ProjectCommandPath(workingDir, name)
		projectMD.Exists = fileExists(projectMD.Path)
	}

	userMD := &types.MDLocation{Path: s.paths.UserCommandPath(name)}
	userMD.Exists = fileExists(userMD.Path)

	scope, mdPath, mdExists := s.ResolveScope(name, workingDir)

	mdFields := []string{}
	if mdExists {
		doc, err := document.Read(mdPath)
		if err != nil {
			return nil, err
		}
		mdFields = fieldNames(doc.Frontmatter)
		if strings.TrimSpace(doc.Body) != "" {
			mdFields = append(mdFields, bodyField)
		}
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
			Scope:  scope,
		},
		JSON: types.SourceInfo{
			Exists: sectionExists,
			Path:   s.paths.File(),
			Fields: jsonFields,
		},
		ProjectMD: projectMD,
		UserMD:    userMD,
	}
	if mdExists {
		sources.MD.Path = mdPath
	}
	return sources, nil
}

// Create writes a new command document at the requested scope. It fails
// with ErrExists when a document exists at either scope or the config
// section already owns the name. A project scope request without a working
// directory falls back to user scope. The "scope" key is routing metadata,
// not a command field, and is stripped from the frontmatter.
func (s *Service) Create(name string, fields map[string]any, workingDir string, scope types.Scope) error {
	if err := s.paths.EnsurePaths(); err != nil {
		return err
	}

	if workingDir != "" {
		projectPath := config.ProjectCommandPath(workingDir, name)
		if fileExists(projectPath) {
			return fmt.Errorf("%w: command %q has a project document at %s", ErrExists, name, projectPath)
		}
	}
	userPath := s.paths.UserCommandPath(name)
	if fileExists(userPath) {
		return fmt.Errorf("%w: command %q has a user document at %s", ErrExists, name, userPath)
	}

	cfg, err := s.store.Read()
	if err != nil {
		return err
	}
	if _, ok := config.Section(cfg, sectionKind)[name]; ok {
		return fmt.Errorf("%w: command %q has an entry in %s", ErrExists, name, s.paths.File())
	}

	targetScope := types.ScopeUser
	targetPath := userPath
	if scope == types.ScopeProject && workingDir != "" {
		targetScope = types.ScopeProject
		targetPath = config.ProjectCommandPath(workingDir, name)
	}

	frontmatter := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != bodyField && k != "scope" {
			frontmatter[k] = v
		}
	}
	body, _ := fields[bodyField].(string)

	if err := document.Write(targetPath, &document.Document{Frontmatter: frontmatter, Body: body}); err != nil {
		return err
	}

	logging.Info().
		Str("command", name).
		Str("scope", string(targetScope)).
		Str("path", targetPath).
		Msg("created command")
	return nil
}

// Update applies field-level updates, routing each field to the store that
// currently owns it. When no document exists at any scope, the update
// creates a user-level document carrying the updated fields (the override
// path for built-in commands), unless the section's template is a
// {file:...} reference, in which case the referenced file is rewritten.
func (s *Service) Update(name string, updates map[string]any, workingDir string) error {
	if err := s.paths.EnsurePaths(); err != nil {
		return err
	}

	scope, mdPath := s.writePath(name, workingDir, "")
	mdExists := fileExists(mdPath)
	creatingNew := !mdExists

	doc := &document.Document{Frontmatter: map[string]any{}}
	if mdExists {
		existing, err := document.Read(mdPath)
		if err != nil {
			return err
		}
		doc = existing
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
					return fmt.Errorf("command %q: %w", name, err)
				}
				if err := promptref.WriteContent(path, text); err != nil {
					return err
				}
				continue
			}

			doc.Body = text
			mdModified = true
			continue
		}

		inMD := false
		if mdExists {
			_, inMD = doc.Frontmatter[field]
		}
		_, inJSON := entry[field]

		switch {
		case inMD || creatingNew:
			// Ownership shifts from the config section to the document when
			// a document is first created.
			doc.Frontmatter[field] = value
			mdModified = true
		case inJSON:
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

	// Never create a config section for a command living exclusively in its
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
		Str("command", name).
		Str("scope", string(scope)).
		Bool("md", mdModified).
		Bool("json", jsonModified).
		Msg("updated command")
	return nil
}

// Delete removes the project document, the user document, and the config
// entry, whichever exist. When none exist it fails with ErrNotFound; unlike
// agents there is no disable fallback.
func (s *Service) Delete(name, workingDir string) error {
	deleted := false

	if workingDir != "" {
		projectPath := config.ProjectCommandPath(workingDir, name)
		if err := os.Remove(projectPath); err == nil {
			logging.Info().Str("command", name).Str("path", projectPath).Msg("deleted project command document")
			deleted = true
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("delete project command document: %w", err)
		}
	}

	userPath := s.paths.UserCommandPath(name)
	if err := os.Remove(userPath); err == nil {
		logging.Info().Str("command", name).Str("path", userPath).Msg("deleted user command document")
		deleted = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("delete user command document: %w", err)
	}

	cfg, err := s.store.Read()
	if err != nil {
		return err
	}
	if config.RemoveEntry(cfg, sectionKind, name) {
		if err := s.store.Write(cfg); err != nil {
			return err
		}
		logging.Info().Str("command", name).Msg("removed command config entry")
		deleted = true
	}

	if !deleted {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// Definition names a command and the stores and scopes that define it.
type Definition struct {
	Name       string `json:"name"`
	ProjectDoc bool   `json:"projectDoc"`
	UserDoc    bool   `json:"userDoc"`
	Section    bool   `json:"section"`
}

// List returns every command with a user-owned definition, sorted by name.
// Project documents are included only when a working directory is supplied.
func (s *Service) List(workingDir string) ([]Definition, error) {
	byName := map[string]*Definition{}

	get := func(name string) *Definition {
		def, ok := byName[name]
		if !ok {
			def = &Definition{Name: name}
			byName[name] = def
		}
		return def
	}

	if workingDir != "" {
		names, err := documentNames(config.ProjectCommandDir(workingDir))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			get(name).ProjectDoc = true
		}
	}

	names, err := documentNames(s.paths.CommandDir())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		get(name).UserDoc = true
	}

	cfg, err := s.store.Read()
	if err != nil {
		return nil, err
	}
	for name := range config.Section(cfg, sectionKind) {
		get(name).Section = true
	}

	defs := make([]Definition, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, *def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// documentNames lists the .md file stems in dir. A missing dir is empty.
func documentNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list command documents: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	return names, nil
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
