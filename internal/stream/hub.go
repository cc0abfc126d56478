// Package stream provides the operator notification hub. Connected review
// UIs receive approval lifecycle notices over WebSocket.
package stream

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/contentstudio-dev/gateway/internal/logging"
)

const writeWait = 10 * time.Second

// Connection represents a single WebSocket subscriber.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	closeOnce sync.Once
}

// Close closes the underlying socket.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.Conn.Close()
	})
}

// Hub manages all subscriber connections and fans notices out to them.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
	}
}

// Register adds a connection and starts its write pump.
func (h *Hub) Register(ws *websocket.Conn) *Connection {
	conn := &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.connections[conn.ID] = conn
	h.mu.Unlock()

	go h.writePump(conn)
	return conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[conn.ID]; ok {
		delete(h.connections, conn.ID)
		close(conn.Send)
	}
	h.mu.Unlock()
	conn.Close()
}

// Broadcast marshals the notice and sends it to every subscriber. Slow
// subscribers with a full buffer are dropped rather than blocking the caller.
func (h *Hub) Broadcast(notice interface{}) {
	data, err := json.Marshal(notice)
	if err != nil {
		logging.Error("failed to marshal notice", zap.Error(err))
		return
	}

	h.mu.RLock()
	var stale []*Connection
	for _, conn := range h.connections {
		select {
		case conn.Send <- data:
		default:
			stale = append(stale, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range stale {
		logging.Warn("subscriber buffer full, closing", zap.String("conn_id", conn.ID))
		h.Unregister(conn)
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) writePump(conn *Connection) {
	defer conn.Close()
	for data := range conn.Send {
		conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
