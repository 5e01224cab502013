// internal/handlers/hub.go
package handlers

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/svintus/svintus/internal/protocol"
)

// outbound is the wire shape of one server-to-client message.
type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// client is one live WebSocket connection's presence in the hub.
type client struct {
	memberID uuid.UUID
	out      chan outbound

	mu     sync.Mutex
	closed bool
}

// send pushes a message onto the client's out channel non-blockingly. Logs if
// the client is closed or the channel is full and the message is dropped.
func (c *client) send(msg outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		log.Printf("hub: member %s already closed, dropped %q", c.memberID, msg.Type)
		return
	}
	select {
	case c.out <- msg:
	default:
		log.Printf("hub: out channel for member %s full, dropped %q", c.memberID, msg.Type)
	}
}

// close shuts the out channel exactly once. Sends racing with close see the
// closed flag instead of a closed channel.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

// Hub maps live connections to member identities and room channels. Room
// channels are keyed by the room's public token so numeric ids never reach
// the transport layer.
type Hub struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*client
	rooms map[uuid.UUID]map[uuid.UUID]*client
}

// NewHub returns an empty connection registry.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*client),
		rooms: make(map[uuid.UUID]map[uuid.UUID]*client),
	}
}

// Register adds a freshly accepted connection.
func (h *Hub) Register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.memberID] = c
}

// Subscribe joins the connection to a room channel.
func (h *Hub) Subscribe(roomToken, memberID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[memberID]
	if !ok {
		return
	}
	channel, ok := h.rooms[roomToken]
	if !ok {
		channel = make(map[uuid.UUID]*client)
		h.rooms[roomToken] = channel
	}
	channel[memberID] = c
}

// Unregister removes the connection from the registry and every room channel
// and closes its out channel, stopping the write pump.
func (h *Hub) Unregister(memberID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[memberID]
	if !ok {
		return
	}
	delete(h.conns, memberID)
	for token, channel := range h.rooms {
		delete(channel, memberID)
		if len(channel) == 0 {
			delete(h.rooms, token)
		}
	}
	c.close()
}

// Deliver fans a batch of notifications out to the right connections
// according to each notification's scope.
func (h *Hub) Deliver(notifs []protocol.Notification) {
	for _, n := range notifs {
		msg := outbound{Type: n.Kind, Payload: n.Payload}

		h.mu.Lock()
		var targets []*client
		switch n.Scope {
		case protocol.ScopeSelf, protocol.ScopeMember:
			if c, ok := h.conns[n.Target]; ok {
				targets = append(targets, c)
			}
		case protocol.ScopeRoom:
			for _, c := range h.rooms[n.Room] {
				targets = append(targets, c)
			}
		case protocol.ScopeRoomExceptSelf:
			for id, c := range h.rooms[n.Room] {
				if id != n.Target {
					targets = append(targets, c)
				}
			}
		}
		h.mu.Unlock()

		for _, c := range targets {
			c.send(msg)
		}
	}
}
