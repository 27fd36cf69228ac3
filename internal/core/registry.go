package core

import "sync"

// Registry maps an authenticated user to its single live connection.
// Registering again for the same user replaces the previous connection without closing it.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]Conn)}
}

// Register stores conn for userID and returns the connection it replaced, if any.
func (r *Registry) Register(userID int64, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[userID]
	r.conns[userID] = conn
	if prev == conn {
		return nil
	}
	return prev
}

// Unregister removes whatever connection is registered for userID.
// It is a no-op when userID is absent.
func (r *Registry) Unregister(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[userID]; !ok {
		return false
	}
	delete(r.conns, userID)
	return true
}

// UnregisterConn removes the entry for userID only if it still points at conn.
// A connection that was already replaced cannot evict its successor.
func (r *Registry) UnregisterConn(userID int64, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.conns[userID]; !ok || cur != conn {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Lookup returns the connection registered for userID.
func (r *Registry) Lookup(userID int64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// IsOpen reports whether conn can still be written to.
func (r *Registry) IsOpen(conn Conn) bool {
	return conn != nil && conn.IsOpen()
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
