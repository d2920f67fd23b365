// Package session tracks per-session run state: the active flag the caller
// flips to stop a run, and the browser the session's tools share.
package session

import (
	"fmt"
	"sync"

	"github.com/entrhq/priceiq/pkg/browser"
)

// Flag is a session's run flag. Stop closes the Done channel so blocked
// waiters observe cancellation without polling.
type Flag struct {
	mu     sync.Mutex
	active bool
	done   chan struct{}
}

func newFlag() *Flag {
	done := make(chan struct{})
	close(done)
	return &Flag{done: done}
}

// Start marks the session active.
func (f *Flag) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		f.active = true
		f.done = make(chan struct{})
	}
}

// Stop marks the session inactive. It is safe to call repeatedly.
func (f *Flag) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		f.active = false
		close(f.done)
	}
}

// Active reports whether the session is running.
func (f *Flag) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Done returns a channel closed once the session is stopped. For a session
// that is not running the channel is already closed.
func (f *Flag) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// State is the table of session flags. Unknown sessions are inactive.
type State struct {
	mu    sync.Mutex
	flags map[string]*Flag
}

// NewState creates an empty table.
func NewState() *State {
	return &State{flags: make(map[string]*Flag)}
}

// Flag returns the session's flag, creating an inactive one if absent.
func (s *State) Flag(id string) *Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flags[id]
	if !ok {
		f = newFlag()
		s.flags[id] = f
	}
	return f
}

// Start marks a session active.
func (s *State) Start(id string) { s.Flag(id).Start() }

// Stop marks a session inactive.
func (s *State) Stop(id string) { s.Flag(id).Stop() }

// Active reports whether a session is running.
func (s *State) Active(id string) bool {
	s.mu.Lock()
	f, ok := s.flags[id]
	s.mu.Unlock()
	return ok && f.Active()
}

// Session bundles what a run needs for one user: the run flag, the browser
// and the directory downloads and exports are written to.
type Session struct {
	ID      string
	Dir     string
	Flag    *Flag
	Browser *browser.TextBrowser
}

// Manager opens sessions backed by a shared State and browser Registry.
type Manager struct {
	root     string
	state    *State
	registry *browser.Registry
}

// NewManager returns a Manager whose sessions live under root. Browsers are
// built with cfg and opts, one per session.
func NewManager(root string, cfg browser.Config, opts ...browser.Option) *Manager {
	return &Manager{
		root:     root,
		state:    NewState(),
		registry: browser.NewRegistry(browser.WorkspaceFactory(root, cfg, opts...)),
	}
}

// Open returns the session for id, creating its workspace and browser on
// first use. Repeated calls share the same flag and browser.
func (m *Manager) Open(id string) (*Session, error) {
	dir, err := browser.EnsureWorkspace(m.root, id)
	if err != nil {
		return nil, err
	}
	b, err := m.registry.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open session %q: %w", id, err)
	}
	return &Session{
		ID:      id,
		Dir:     dir,
		Flag:    m.state.Flag(id),
		Browser: b,
	}, nil
}

// State exposes the flag table, e.g. for a stop key handler.
func (m *Manager) State() *State {
	return m.state
}
