package command

import (
	"os"

	"github.com/openchamber-ai/openchamber/internal/config"
	"github.com/openchamber-ai/openchamber/pkg/types"
)

// ResolveScope reports where the named command's document lives. The project
// location is checked first, and only when a working directory is supplied;
// then the user location. The third return is false when no document exists
// at either scope.
func (s *Service) ResolveScope(name, workingDir string) (types.Scope, string, bool) {
	if workingDir != "" {
		projectPath := config.ProjectCommandPath(workingDir, name)
		if fileExists(projectPath) {
			return types.ScopeProject, projectPath, true
		}
	}

	userPath := s.paths.UserCommandPath(name)
	if fileExists(userPath) {
		return types.ScopeUser, userPath, true
	}

	return "", "", false
}

// writePath returns where a mutation of the named command should land. An
// existing document keeps its location regardless of the requested scope, so
// edits never relocate a command. Otherwise a requested project scope is
// honored when a working directory is available, and user scope is the
// default.
func (s *Service) writePath(name, workingDir string, requested types.Scope) (types.Scope, string) {
	if scope, path, ok := s.ResolveScope(name, workingDir); ok {
		return scope, path
	}

	if requested == types.ScopeProject && workingDir != "" {
		return types.ScopeProject, config.ProjectCommandPath(workingDir, name)
	}

	return types.ScopeUser, s.paths.UserCommandPath(name)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
