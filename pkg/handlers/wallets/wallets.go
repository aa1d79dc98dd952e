package wallets

import (
	"context"
	"errors"
	"net/http"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/handlers/respond"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/mapping"
	"github.com/chris/escrow-wallet/pkg/models"
)

// WalletService is what the wallet handlers need from the wallet service.
type WalletService interface {
	CreateWallet(ctx context.Context, userID string) (*models.Wallet, error)
	GetBalance(ctx context.Context, userID string) (*models.Wallet, error)
}

// Reconciler checks a wallet against the ledger.
type Reconciler interface {
	Reconcile(ctx context.Context, userID string) (*ledger.Report, error)
}

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Wallets    WalletService
	Reconciler Reconciler
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(wallets WalletService, reconciler Reconciler) *WalletsHandler {
	return &WalletsHandler{Wallets: wallets, Reconciler: reconciler}
}

// CreateWallet opens a wallet for the caller, or for the named user when the
// caller is an admin.
func (h *WalletsHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var body api.NewWallet
	if r.ContentLength != 0 && !respond.Decode(w, r, &body) {
		return
	}
	userID := p.UserID
	if body.UserId != nil && *body.UserId != "" {
		userID = *body.UserId
	}
	if err := p.RequireActFor(userID); err != nil {
		respond.Error(w, r, "Failed to create wallet", err)
		return
	}

	created, err := h.Wallets.CreateWallet(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, "Failed to create wallet", err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiWallet(created))
}

// GetWallet returns the balance and holds of a wallet, creating an empty
// wallet on first access.
func (h *WalletsHandler) GetWallet(w http.ResponseWriter, r *http.Request, userId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	if err := p.RequireActFor(userId); err != nil {
		respond.Error(w, r, "Failed to retrieve wallet", err)
		return
	}

	wallet, err := h.Wallets.GetBalance(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, "Failed to retrieve wallet", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiWallet(wallet))
}

// GetWalletReconciliation recomputes a wallet from the ledger. A wallet that
// does not reconcile is frozen and reported with 423, unless it changed too
// recently to judge.
func (h *WalletsHandler) GetWalletReconciliation(w http.ResponseWriter, r *http.Request, userId string) {
	if _, ok := respond.Principal(w, r); !ok {
		return
	}

	report, err := h.Reconciler.Reconcile(r.Context(), userId)
	if err != nil {
		if report != nil && errors.Is(err, models.ErrInvariantViolation) {
			respond.JSON(w, http.StatusLocked, mapping.ToApiReport(report))
			return
		}
		respond.Error(w, r, "Failed to reconcile wallet", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiReport(report))
}
