package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Session binds one conversation's memory to its serialization lock. Turns of
// the same session must not interleave; callers hold the lock for the whole
// turn.
type Session struct {
	ID     string
	Memory *Memory

	mu sync.Mutex
}

// Lock serializes turns of this session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Manager owns all live sessions. Distinct sessions are independent and may
// run turns in parallel.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it when unknown. An empty id
// mints a fresh session with a generated UUID.
func (m *Manager) Get(id string) *Session {
	if id != "" {
		m.mu.RLock()
		s, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return s
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	} else if s, ok := m.sessions[id]; ok {
		return s
	}

	s := &Session{ID: id, Memory: NewMemory()}
	m.sessions[id] = s
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
