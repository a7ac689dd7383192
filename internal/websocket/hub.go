package websocket

import (
	"log"
	"sync"
	"time"
)

// Hub owns every live realtime connection. Clients are indexed by user so
// the fan-out can address all of a user's devices at once. The hub is the
// sole owner of a registered client; nothing else retains one past the
// upgrade handler.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	userIndex map[string]map[string]bool

	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewHub(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

// Register adds an authenticated client to its user's group. It reports
// false when the user is already at the connection cap; the caller is then
// responsible for closing the transport.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.userIndex[client.UserID]) >= h.maxConnPerUser {
		log.Printf("[WS] max connections reached for user %s", client.UserID)
		return false
	}

	if h.userIndex[client.UserID] == nil {
		h.userIndex[client.UserID] = make(map[string]bool)
	}

	h.clients[client.ID] = client
	h.userIndex[client.UserID][client.ID] = true

	log.Printf("[WS] client registered: %s (user: %s)", client.ID, client.UserID)
	return true
}

// Unregister removes the client and closes its send channel. Calling it
// for an already-removed client is a no-op, so the read pump and the
// fan-out's dead-connection path can both trigger it safely.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	delete(h.clients, client.ID)
	delete(h.userIndex[client.UserID], client.ID)
	if len(h.userIndex[client.UserID]) == 0 {
		delete(h.userIndex, client.UserID)
	}

	close(client.Send)
	log.Printf("[WS] client unregistered: %s", client.ID)
}

// ConnectionsFor returns a snapshot of the connection IDs currently live
// for the user.
func (h *Hub) ConnectionsFor(userID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.userIndex[userID]))
	for id := range h.userIndex[userID] {
		ids = append(ids, id)
	}
	return ids
}

// BroadcastToUser pushes the payload to every live connection of the user.
// Delivery is best effort: a connection that cannot accept the payload is
// dropped from the registry without affecting the rest of the group.
func (h *Hub) BroadcastToUser(userID string, payload []byte) {
	h.mu.RLock()
	var dead []*Client
	for clientID := range h.userIndex[userID] {
		client := h.clients[clientID]
		select {
		case client.Send <- payload:
		default:
			log.Printf("[WS] client %s send buffer full, dropping connection", clientID)
			dead = append(dead, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dead {
		h.Unregister(client)
	}
}
