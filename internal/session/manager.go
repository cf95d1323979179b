package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/matsen/whitespace/internal/graph"
)

// Manager holds the current session and swaps it wholesale when a new
// payload arrives.
type Manager struct {
	opts   Options
	logger *slog.Logger

	mu      sync.Mutex
	current *Session
}

// NewManager creates a manager with no session.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{opts: opts, logger: logger}
}

// Current returns the live session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Replace disposes the current session and then builds one for p. The old
// session is detached before the new one exists, so no event reaches both.
func (m *Manager) Replace(ctx context.Context, p *graph.Payload) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var previous string
	if m.current != nil {
		previous = m.current.ID.String()
		m.current.Dispose()
		m.current = nil
	}

	s := New(ctx, p, m.opts)
	m.current = s
	m.logger.Info("session replaced",
		"session", s.ID.String(),
		"previous", previous,
		"nodes", s.Graph.Len(),
		"fallback_camera", s.Fit.Fallback)
	return s
}

// Close disposes the current session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Dispose()
		m.current = nil
	}
}
