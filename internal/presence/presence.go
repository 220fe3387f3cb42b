// Package presence tracks the chat participants behind currently-open
// WebSocket connections. The registry is process-local and never persisted;
// entries live exactly as long as the connection they belong to.
package presence

import (
	"sync"
	"time"

	"github.com/iphonefly/realtime-api/internal/model"
)

// Registry maps connection ids to presence entries. Snapshot order is
// insertion order; rejoining an existing connection overwrites the entry in
// place without moving it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]model.OnlineUser
	order   []string
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]model.OnlineUser)}
}

// Join records a participant for the given connection. A second join on the
// same connection silently overwrites the previous entry.
func (r *Registry) Join(connID, name string) model.OnlineUser {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := model.OnlineUser{ID: connID, Name: name, JoinedAt: time.Now()}
	if _, exists := r.entries[connID]; !exists {
		r.order = append(r.order, connID)
	}
	r.entries[connID] = entry
	return entry
}

// Leave removes and returns the entry for the connection. The second return
// is false when the connection never joined; that case is not an error.
func (r *Registry) Leave(connID string) (model.OnlineUser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[connID]
	if !ok {
		return model.OnlineUser{}, false
	}
	delete(r.entries, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return entry, true
}

// Snapshot returns the current roster in join order.
func (r *Registry) Snapshot() []model.OnlineUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.OnlineUser, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.entries[id])
	}
	return users
}

// Count returns the number of joined connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
