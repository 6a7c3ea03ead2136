package server

import (
	"sync"
)

// registry maps a user id to that user's single most recent connection.
// Registering a new connection for an already mapped user supersedes the
// previous mapping.
type registry struct {
	mu    sync.RWMutex
	conns map[string]*Client
}

func newRegistry() *registry {
	return &registry{
		conns: make(map[string]*Client),
	}
}

// register stores c as the connection for userId and returns the
// connection it displaced, if any.
func (r *registry) register(userId string, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[userId]
	r.conns[userId] = c
	if prev == c {
		return nil
	}
	return prev
}

// lookup returns the live connection for userId. Absence means the user
// is not currently reachable, not an error.
func (r *registry) lookup(userId string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[userId]
	return c, ok
}

// unregister removes the mapping for userId only if it still points at
// c, so a superseded connection cannot evict its replacement.
func (r *registry) unregister(userId string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.conns[userId]; ok && cur == c {
		delete(r.conns, userId)
	}
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns = make(map[string]*Client)
}
