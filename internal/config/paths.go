// Package config manages the opencode configuration directory: the paths
// where agent and command documents live, and the consolidated opencode.json
// store with its backup policy.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths locates everything the engine touches under a single config root.
// The root is injectable so tests can run against a temporary directory.
type Paths struct {
	Root string
}

// NewPaths returns Paths rooted at root, falling back to DefaultRoot when
// root is empty.
func NewPaths(root string) *Paths {
	if root == "" {
		root = DefaultRoot()
	}
	return &Paths{Root: root}
}

// DefaultRoot returns the config root to use.
// Prefers OPENCODE_CONFIG_DIR, then XDG_CONFIG_HOME, then ~/.config.
func DefaultRoot() string {
	if dir := os.Getenv("OPENCODE_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "opencode")
}

// AgentDir returns the user-global agent document directory.
func (p *Paths) AgentDir() string {
	return filepath.Join(p.Root, "agent")
}

// CommandDir returns the user-global command document directory.
func (p *Paths) CommandDir() string {
	return filepath.Join(p.Root, "command")
}

// AgentPath returns the document path for the named agent.
func (p *Paths) AgentPath(name string) string {
	return filepath.Join(p.AgentDir(), name+".md")
}

// UserCommandPath returns the user-global document path for the named command.
func (p *Paths) UserCommandPath(name string) string {
	return filepath.Join(p.CommandDir(), name+".md")
}

// File returns the path of the consolidated config file.
func (p *Paths) File() string {
	return filepath.Join(p.Root, "opencode.json")
}

// BackupFile returns the path the previous config revision is copied to
// before each write.
func (p *Paths) BackupFile() string {
	return p.File() + ".openchamber.backup"
}

// EnsurePaths creates the config root and both document directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Root, p.AgentDir(), p.CommandDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ProjectCommandDir returns the project-level command directory under a
// working directory.
func ProjectCommandDir(workingDir string) string {
	return filepath.Join(workingDir, ".opencode", "command")
}

// ProjectCommandPath returns the project-level document path for the named
// command.
func ProjectCommandPath(workingDir, name string) string {
	return filepath.Join(ProjectCommandDir(workingDir), name+".md")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}
