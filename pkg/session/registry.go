// Package session tracks the connected operators and fans shared status
// out to all of them. Role assignment is first-come-first-served: the
// first connection gets user_1, the second user_2, everyone after that
// spectates.
package session

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/hrilab/go-duo/internal/log"
	"github.com/hrilab/go-duo/pkg/negotiation"
)

// Registry owns the set of connected negotiation-channel clients.
type Registry struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[*Client]bool),
	}
}

// Connect registers a connection and assigns it the first free seat.
// The client's write pump is started here; the caller owns the read loop.
func (r *Registry) Connect(conn *websocket.Conn) *Client {
	r.mu.Lock()
	role := negotiation.RoleSpectator
	if !r.presentLocked(negotiation.RoleUser1) {
		role = negotiation.RoleUser1
	} else if !r.presentLocked(negotiation.RoleUser2) {
		role = negotiation.RoleUser2
	}

	client := newClient(r, conn, role)
	r.clients[client] = true
	count := len(r.clients)
	r.mu.Unlock()

	go client.writePump()
	log.Info("operator connected", "role", role, "client", client.ID, "total", count)
	return client
}

// Disconnect removes a client and frees its seat.
func (r *Registry) Disconnect(client *Client) {
	r.mu.Lock()
	delete(r.clients, client)
	count := len(r.clients)
	r.mu.Unlock()

	client.close()
	log.Info("operator disconnected", "role", client.Role, "client", client.ID, "remaining", count)
}

// drop removes a client that proved unreachable or too slow. Used from
// the send path; must never block.
func (r *Registry) drop(client *Client) {
	r.mu.Lock()
	if _, ok := r.clients[client]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.clients, client)
	r.mu.Unlock()

	client.close()
	log.Warn("dropped unresponsive client", "role", client.Role, "client", client.ID)
}

// Present reports whether the given seat is taken.
func (r *Registry) Present(role negotiation.Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.presentLocked(role)
}

func (r *Registry) presentLocked(role negotiation.Role) bool {
	for client := range r.clients {
		if client.Role == role {
			return true
		}
	}
	return false
}

// Ready reports whether both operator seats are filled.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.presentLocked(negotiation.RoleUser1) && r.presentLocked(negotiation.RoleUser2)
}

// Count returns the number of connected clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Broadcast sends a JSON message to every connected client. Unreachable
// or slow clients are dropped and removed; one bad spectator never blocks
// the rest.
func (r *Registry) Broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("broadcast marshal failed", "error", err)
		return
	}

	r.mu.RLock()
	targets := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		targets = append(targets, client)
	}
	r.mu.RUnlock()

	for _, client := range targets {
		if !client.trySend(data) {
			r.drop(client)
		}
	}
}
