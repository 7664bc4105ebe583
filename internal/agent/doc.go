// Package agent persists agent definitions across their two storage
// representations.
//
// An agent may be defined as a markdown document with YAML frontmatter in
// the user-global agent directory (<config-root>/agent/<name>.md), as an
// entry in the "agent" section of opencode.json, or both. The document body
// holds the agent's prompt; all other fields live in the frontmatter or the
// config section.
//
// # Field Ownership
//
// Every mutation re-derives which representation currently owns a field from
// the on-disk state at call time. A field defined in the document is updated
// there; a field defined only in the config section is updated there; a new
// field lands in the config section when both representations exist, in the
// document when only the document exists, and in the config section
// otherwise. The [Service.Sources] descriptor exposes this ownership to
// callers before they edit.
//
// # Prompt Handling
//
// The prompt is the document body when a document exists. Without a
// document, a config-section prompt that is a {file:...} reference is
// rewritten by replacing the referenced file's content; an inline
// config-section prompt is updated in place.
//
// # Deleting Built-ins
//
// [Service.Delete] removes whatever definitions exist. When none exist the
// name is assumed to refer to a built-in agent shipped with the runtime, and
// a {disable: true} entry is written to the config section instead. The
// command service deliberately does not share this fallback; deleting an
// unknown command is an error. See internal/command.
//
// The service holds no state between calls and performs no locking. Callers
// mutating the same agent concurrently must serialize externally; the last
// writer wins.
package agent
