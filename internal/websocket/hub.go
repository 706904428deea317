package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the live-update notification broadcast to connected clients
// when an event changes. Type is "event_created", "event_updated" or
// "event_deleted"; clients refetch the affected views.
type Message struct {
	Type    string `json:"type"`
	EventID int64  `json:"event_id,omitempty"`
}

// Hub maintains the set of active WebSocket clients and fans event-change
// notifications out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// NotifyEvent broadcasts an event change to all connected clients.
func (h *Hub) NotifyEvent(action string, eventID int64) {
	h.broadcast(Message{Type: "event_" + action, EventID: eventID})
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
