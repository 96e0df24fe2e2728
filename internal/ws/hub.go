package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub manages WebSocket clients and broadcasts messages. Messages that
// do not fit a client's buffer are dropped and counted by envelope type.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	dropMu  sync.Mutex
	dropped map[string]int
	onDrop  func(msgType string)
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		dropped: make(map[string]int),
	}
}

// OnDrop sets a hook called once per message dropped for a slow client.
func (h *Hub) OnDrop(fn func(msgType string)) {
	h.dropMu.Lock()
	defer h.dropMu.Unlock()
	h.onDrop = fn
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.drop(msg)
		}
	}
}

func (h *Hub) drop(msg []byte) {
	msgType := envelopeType(msg)

	h.dropMu.Lock()
	h.dropped[msgType]++
	fn := h.onDrop
	h.dropMu.Unlock()

	// A dropped hour:update leaves a gap in that client's hourly chart;
	// its next summary:update still carries the correct totals.
	slog.Warn("client buffer full, dropping message", "type", msgType)
	if fn != nil {
		fn(msgType)
	}
}

// Dropped returns the number of dropped messages per envelope type.
func (h *Hub) Dropped() map[string]int {
	h.dropMu.Lock()
	defer h.dropMu.Unlock()
	out := make(map[string]int, len(h.dropped))
	for k, v := range h.dropped {
		out[k] = v
	}
	return out
}

func envelopeType(msg []byte) string {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil || env.Type == "" {
		return "unknown"
	}
	return env.Type
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
