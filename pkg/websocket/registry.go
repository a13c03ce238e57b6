package websocket

import "sync"

// Registry maps live socket IDs to the authenticated user behind them.
// One user may hold several sockets (multiple devices); each socket maps
// to at most one user.
type Registry struct {
	mu      sync.RWMutex
	byConn  map[string]string
	counts  map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]string),
		counts: make(map[string]int),
	}
}

// Bind associates a socket with a user, replacing any prior binding for
// that socket.
func (r *Registry) Bind(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byConn[connID]; ok {
		r.decrement(prev)
	}
	r.byConn[connID] = userID
	r.counts[userID]++
}

// Lookup returns the user bound to a socket, if any
func (r *Registry) Lookup(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// Unbind removes a socket's binding and reports the user it belonged to
// and whether that was the user's last socket.
func (r *Registry) Unbind(connID string) (userID string, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)
	return userID, r.decrement(userID)
}

// ConnectionCount returns the number of bound sockets for a user
func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[userID]
}

func (r *Registry) decrement(userID string) (last bool) {
	r.counts[userID]--
	if r.counts[userID] <= 0 {
		delete(r.counts, userID)
		return true
	}
	return false
}
