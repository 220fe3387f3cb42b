package ws

import (
	"log"
	"sync"
)

// Hub is the registry of live connections the synchronization handlers
// publish through. Broadcasts iterate a snapshot of the registry so that
// removals during fan-out never invalidate the iteration.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Add registers a connection for broadcast delivery.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("[WebSocket] Client %s connected. Total clients: %d", c.ID, total)
}

// Remove unregisters a connection and closes its send channel. It reports
// whether the client was still registered.
func (h *Hub) Remove(c *Client) bool {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		close(c.send)
		log.Printf("[WebSocket] Client %s disconnected. Total clients: %d", c.ID, total)
	}
	return ok
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast publishes an event to every registered connection.
func (h *Hub) Broadcast(event string, payload any) {
	h.BroadcastExcept(nil, event, payload)
}

// BroadcastExcept publishes an event to every registered connection except
// skip. Clients whose buffers are full are dropped from the registry; a
// connection that disappears mid-broadcast simply misses the frame.
func (h *Hub) BroadcastExcept(skip *Client, event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		log.Printf("[WebSocket] ❌ Failed to encode %s broadcast: %v", event, err)
		return
	}

	var failed []*Client
	for _, client := range h.snapshot() {
		if client == skip {
			continue
		}
		if !client.enqueue(frame) {
			failed = append(failed, client)
		}
	}

	for _, client := range failed {
		log.Printf("[WebSocket] Client %s removed due to full send buffer", client.ID)
		h.Remove(client)
		client.Close()
	}
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}
