// Package websockets pushes wallet and milestone updates to connected users.
package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Publisher defines the interface for publishing messages to WebSocket clients.
type Publisher interface {
	// Publish sends message to every connection of userID.
	Publish(ctx context.Context, userID string, message Message) error
}

// NoOpPublisher drops every message. Lambdas use it; they have no connections.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(ctx context.Context, userID string, message Message) error {
	return nil
}

const writeWait = 5 * time.Second

type connection struct {
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

func (c *connection) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks the open connections of this process by user.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*connection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*connection)}
}

// Make sure we conform to the interface
var _ Publisher = (*Hub)(nil)

// AddConnection registers conn for userID and returns its connection id.
func (h *Hub) AddConnection(userID string, conn *websocket.Conn) string {
	id := uuid.New().String()
	h.mu.Lock()
	h.conns[id] = &connection{userID: userID, conn: conn}
	h.mu.Unlock()
	return id
}

// RemoveConnection forgets a connection. The caller closes it.
func (h *Hub) RemoveConnection(connectionID string) {
	h.mu.Lock()
	delete(h.conns, connectionID)
	h.mu.Unlock()
}

// Connections returns how many connections userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.conns {
		if c.userID == userID {
			n++
		}
	}
	return n
}

// Publish sends message to every connection of userID. Connections that
// cannot be written to are dropped.
func (h *Hub) Publish(ctx context.Context, userID string, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	targets := make(map[string]*connection)
	for id, c := range h.conns {
		if c.userID == userID {
			targets[id] = c
		}
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(payload); err != nil {
			slog.InfoContext(ctx, "stale connection found, deleting", "connectionId", id, "error", err)
			h.RemoveConnection(id)
			c.conn.Close()
		}
	}
	return nil
}
