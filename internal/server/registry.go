package server

import (
	"sync"

	"github.com/samber/lo"
)

// Registry holds the registered sessions keyed by their connection handle.
// It is safe for concurrent use; the hub mutates it while the HTTP surface
// reads Count.
type Registry struct {
	mu       sync.RWMutex
	sessions map[Conn]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[Conn]*Session)}
}

// Add inserts a registered session for conn. Callers must not add the same
// handle twice; doing so returns ErrAlreadyRegistered and keeps the existing entry.
func (r *Registry) Add(conn Conn, id, username string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[conn]; exists {
		return nil, ErrAlreadyRegistered
	}
	session := &Session{
		Conn:     conn,
		ID:       id,
		Username: username,
		State:    StateRegistered,
	}
	r.sessions[conn] = session
	return session, nil
}

// Remove deletes the session for conn and returns it. Removing an absent
// handle is a no-op.
func (r *Registry) Remove(conn Conn) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[conn]
	if !ok {
		return nil, false
	}
	delete(r.sessions, conn)
	session.State = StateClosed
	return session, true
}

// Lookup returns the session registered for conn.
func (r *Registry) Lookup(conn Conn) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[conn]
	return session, ok
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns the current recipient set. Order is unspecified.
func (r *Registry) Snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.sessions)
}
