// Package command persists command definitions across their two storage
// representations and two scopes.
//
// A command may be defined as a markdown document with YAML frontmatter at
// project scope (<workingDir>/.opencode/command/<name>.md) or user scope
// (<config-root>/command/<name>.md), or as an entry in the "command" section
// of opencode.json. The document body holds the command's template.
//
// # Scope Precedence
//
// Resolution is an ordered lookup chain, not a merge: the project document
// wins when it exists, then the user document, and the config section is
// consulted only when no document exists at either scope. Partial
// definitions are never combined across scopes. Writes target the existing
// document's location, so an edit never silently relocates a command; only
// a brand-new document honors a requested scope.
//
// # Field Ownership
//
// Field routing matches the agent service, with one divergence: updating a
// command with no document anywhere creates a user-level document (the
// override path for built-in commands) instead of writing the config
// section, except when the section's template is a {file:...} reference, in
// which case the referenced file is rewritten.
//
// # Deletion
//
// Delete removes the project document, the user document, and the config
// entry, whichever exist. When none exist it fails with ErrNotFound. Unlike
// agents there is no disable fallback; the asymmetry is intentional and
// load-bearing for callers. See internal/agent.
package command
