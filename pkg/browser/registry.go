package browser

import (
	"fmt"
	"sync"

	"github.com/entrhq/priceiq/pkg/security/workspace"
)

// Factory builds the browser for a session.
type Factory func(sessionID string) (*TextBrowser, error)

// Registry hands out one browser per session, building it on first use.
type Registry struct {
	mu       sync.Mutex
	browsers map[string]*TextBrowser
	factory  Factory
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		browsers: make(map[string]*TextBrowser),
		factory:  factory,
	}
}

// Get returns the session's browser, creating it if absent. Concurrent calls
// for the same session receive the same instance.
func (r *Registry) Get(sessionID string) (*TextBrowser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.browsers[sessionID]; ok {
		return b, nil
	}
	b, err := r.factory(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser for session %q: %w", sessionID, err)
	}
	r.browsers[sessionID] = b
	return b, nil
}

// WorkspaceFactory returns a Factory whose browsers save downloads and
// screenshots under root/<sessionID>.
func WorkspaceFactory(root string, cfg Config, opts ...Option) Factory {
	return func(sessionID string) (*TextBrowser, error) {
		dir, err := EnsureWorkspace(root, sessionID)
		if err != nil {
			return nil, err
		}
		sessionCfg := cfg
		sessionCfg.DownloadsDir = dir
		return New(sessionCfg, opts...)
	}
}

// EnsureWorkspace creates and returns the absolute directory for a session.
// Session IDs that would escape root are rejected.
func EnsureWorkspace(root, sessionID string) (string, error) {
	guard, err := workspace.NewGuard(root)
	if err != nil {
		return "", err
	}
	return guard.SessionDir(sessionID)
}
