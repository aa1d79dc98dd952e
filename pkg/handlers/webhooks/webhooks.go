package webhooks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/chris/escrow-wallet/pkg/gateway"
	"github.com/chris/escrow-wallet/pkg/handlers/respond"
	"github.com/chris/escrow-wallet/pkg/models"
)

// maxBodyBytes caps the size of a provider callback.
const maxBodyBytes = 64 << 10

// EventHandler acts on a verified gateway event.
type EventHandler interface {
	HandleGatewayEvent(ctx context.Context, event *gateway.WebhookEvent) error
}

// Handler receives payment provider callbacks. It is mounted outside the
// bearer-token routes; the provider signature authenticates the request.
type Handler struct {
	Parser gateway.WebhookParser
	Events EventHandler
}

func NewHandler(parser gateway.WebhookParser, events EventHandler) *Handler {
	return &Handler{Parser: parser, Events: events}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	event, err := h.Parser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			slog.WarnContext(r.Context(), "rejected webhook", "error", err)
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		respond.Error(w, r, "Failed to parse webhook", err)
		return
	}

	if err := h.Events.HandleGatewayEvent(r.Context(), event); err != nil {
		// A non-2xx answer makes the provider redeliver; only worth it when
		// a retry can succeed.
		if errors.Is(err, models.ErrGateway) || respond.Status(err) >= http.StatusInternalServerError {
			respond.Error(w, r, "Failed to handle webhook", err)
			return
		}
		slog.WarnContext(r.Context(), "webhook event not applied", "event_id", event.ID, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
