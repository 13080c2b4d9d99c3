package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mediscribe/scribe-gateway/internal/observability"
)

// Manager holds the live sessions in memory. Sessions do not survive a
// restart; there is deliberately no persistence.
type Manager struct {
	factory func(id string) *Controller

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewManager creates a session manager. The factory builds a controller for
// a freshly issued session ID.
func NewManager(factory func(id string) *Controller) *Manager {
	return &Manager{
		factory:  factory,
		sessions: make(map[string]*Controller),
	}
}

// Create issues a new session with a random ID.
func (m *Manager) Create() *Controller {
	id := uuid.NewString()
	controller := m.factory(id)

	m.mu.Lock()
	m.sessions[id] = controller
	m.mu.Unlock()

	observability.RecordSessionStart()
	return controller
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	controller, ok := m.sessions[id]
	return controller, ok
}

// Delete discards a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		observability.RecordSessionEnd()
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
