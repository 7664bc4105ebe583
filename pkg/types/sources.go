// Package types defines the shared types of the OpenChamber config engine.
package types

// Scope identifies the precedence level at which a command document lives.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeProject Scope = "project"
)

// SourceInfo describes one storage representation of an entity: whether it
// exists, where it lives, and which field names it populates.
type SourceInfo struct {
	Exists bool     `json:"exists"`
	Path   string   `json:"path,omitempty"`
	Fields []string `json:"fields"`
	Scope  Scope    `json:"scope,omitempty"`
}

// MDLocation reports whether a document exists at one specific scope.
type MDLocation struct {
	Exists bool   `json:"exists"`
	Path   string `json:"path,omitempty"`
}

// ConfigSources is the read-only descriptor callers use to discover which
// store owns what before deciding how to display or edit a field.
type ConfigSources struct {
	MD        SourceInfo  `json:"md"`
	JSON      SourceInfo  `json:"json"`
	ProjectMD *MDLocation `json:"projectMd,omitempty"`
	UserMD    *MDLocation `json:"userMd,omitempty"`
}
