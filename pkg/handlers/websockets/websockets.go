package websockets

import (
	"log/slog"
	"net/http"

	"github.com/chris/escrow-wallet/pkg/handlers/respond"
	"github.com/chris/escrow-wallet/pkg/websockets"
	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated requests to WebSocket connections and
// registers them with the hub under the caller's user id.
type Handler struct {
	hub      *websockets.Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a new Handler. An empty allowedOrigins accepts any origin.
func NewHandler(hub *websockets.Hub, allowedOrigins []string) *Handler {
	h := &Handler{hub: hub}
	h.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := h.hub.AddConnection(p.UserID, conn)
	slog.Info("Client connected", "connectionId", connectionID, "user_id", p.UserID)
	defer func() {
		h.hub.RemoveConnection(connectionID)
		slog.Info("Client disconnected", "connectionId", connectionID, "user_id", p.UserID)
	}()

	conn.SetReadLimit(512)

	// Clients do not send messages; reading detects when they go away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("unexpected close error", "error", err)
			}
			break
		}
	}
}
