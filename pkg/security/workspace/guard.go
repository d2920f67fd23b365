// Package workspace keeps per-session directories inside a single workspace
// root. Session IDs come from callers and are treated as untrusted path
// components.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard confines session directories to a workspace root.
type Guard struct {
	root string // absolute, symlinks evaluated
}

// NewGuard creates the workspace root if needed and returns a guard for it.
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	// /var -> /private/var on macOS
	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace directory symlinks: %w", err)
	}
	return &Guard{root: evalPath}, nil
}

// Root returns the absolute workspace root.
func (g *Guard) Root() string {
	return g.root
}

// SessionDir creates and returns the directory of one session. The ID must
// name a directory strictly below the root.
func (g *Guard) SessionDir(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session id cannot be empty")
	}

	dir := filepath.Join(g.root, filepath.Clean(sessionID))
	if dir == g.root || !g.IsWithinWorkspace(dir) {
		return "", fmt.Errorf("session id '%s' is outside workspace boundaries", sessionID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session workspace: %w", err)
	}

	// A symlink planted under the root could still point elsewhere.
	if !g.IsWithinWorkspace(dir) {
		return "", fmt.Errorf("session id '%s' is outside workspace boundaries", sessionID)
	}
	return dir, nil
}

// IsWithinWorkspace reports whether absPath is the root or below it once
// symlinks are resolved.
func (g *Guard) IsWithinWorkspace(absPath string) bool {
	evalPath := resolveSymlinks(absPath)
	return evalPath == g.root || strings.HasPrefix(evalPath+string(filepath.Separator), g.root+string(filepath.Separator))
}

// resolveSymlinks resolves the longest existing prefix of path and appends
// the remaining components unchanged.
func resolveSymlinks(path string) string {
	var components []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(components) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, components[i])
			}
			return resolved
		}

		dir := filepath.Dir(current)
		if dir == current || dir == "." {
			return path
		}
		components = append(components, filepath.Base(current))
		current = dir
	}
}
