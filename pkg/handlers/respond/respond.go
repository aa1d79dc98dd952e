// Package respond holds the request decoding and response writing shared by
// the HTTP handlers.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Decode reads the JSON request body into dst. On failure it has already
// answered 400.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// Principal returns the authenticated caller, answering 401 if there is none.
func Principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Missing bearer token", http.StatusUnauthorized)
	}
	return p, ok
}

// Status maps a service error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists),
		errors.Is(err, models.ErrAlreadyHeld),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrIdempotencyConflict),
		errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrWalletFrozen),
		errors.Is(err, models.ErrInvariantViolation):
		return http.StatusLocked
	case errors.Is(err, models.ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// Error answers with the status matching err. Server errors are logged and
// their detail is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
		if status == http.StatusInternalServerError {
			http.Error(w, msg, status)
			return
		}
	}
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), status)
}
