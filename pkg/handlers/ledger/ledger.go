package ledger

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/handlers/respond"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/mapping"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/websockets"
)

// Ledger records transactions by hand and computes statistics over them.
type Ledger interface {
	Record(ctx context.Context, tx *models.Transaction) (string, error)
	UpdateStatus(ctx context.Context, txID string, status models.TransactionStatus) (*models.Transaction, error)
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)
	Aggregate(ctx context.Context, groupBy ledger.GroupBy, filter storage.TransactionFilter) ([]ledger.Group, error)
}

// LedgerHandler holds the dependencies for the admin ledger handlers. The
// router restricts every route here to admins.
type LedgerHandler struct {
	Ledger   Ledger
	Currency string
	Notifier *websockets.Notifier
}

// NewLedgerHandler creates a new LedgerHandler. Totals are displayed in currency.
func NewLedgerHandler(ledger Ledger, currency string, notifier *websockets.Notifier) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger, Currency: currency, Notifier: notifier}
}

// CreateManualTransaction records an initiated or failed transaction. It
// moves no money until its status is updated to succeeded.
func (h *LedgerHandler) CreateManualTransaction(w http.ResponseWriter, r *http.Request) {
	if _, ok := respond.Principal(w, r); !ok {
		return
	}
	var body api.ManualTransaction
	if !respond.Decode(w, r, &body) {
		return
	}

	tx := mapping.ToDomainManualTransaction(body)
	if _, err := h.Ledger.Record(r.Context(), tx); err != nil {
		respond.Error(w, r, "Failed to record transaction", err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiTransaction(tx))
}

// UpdateTransactionStatus moves a transaction through its status machine.
// The owner is told about the new balance when the update settled it.
func (h *LedgerHandler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request, transactionId api.TransactionId) {
	if _, ok := respond.Principal(w, r); !ok {
		return
	}
	var body api.TransactionStatusUpdate
	if !respond.Decode(w, r, &body) {
		return
	}

	tx, err := h.Ledger.UpdateStatus(r.Context(), transactionId.String(), models.TransactionStatus(strings.ToLower(body.Status)))
	if err != nil {
		respond.Error(w, r, "Failed to update transaction status", err)
		return
	}
	if tx.Status == models.TransactionSucceeded {
		h.Notifier.WalletChanged(r.Context(), tx.UserId, tx.Id, signedAmount(tx))
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransaction(tx))
}

// GetTransactionStats counts and sums transactions per status, type,
// provider or currency.
func (h *LedgerHandler) GetTransactionStats(w http.ResponseWriter, r *http.Request, params api.GetTransactionStatsParams) {
	if _, ok := respond.Principal(w, r); !ok {
		return
	}

	groupBy := ledger.GroupByStatus
	if params.GroupBy != nil {
		groupBy = ledger.GroupBy(*params.GroupBy)
	}
	if !groupBy.Valid() {
		respond.Error(w, r, "Failed to retrieve transaction stats", fmt.Errorf("%w: cannot group by %q", models.ErrValidation, groupBy))
		return
	}
	var filter storage.TransactionFilter
	if params.UserId != nil {
		filter.UserID = *params.UserId
	}

	groups, err := h.Ledger.Aggregate(r.Context(), groupBy, filter)
	if err != nil {
		respond.Error(w, r, "Failed to retrieve transaction stats", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiGroups(groups, h.Currency))
}

func signedAmount(tx *models.Transaction) int64 {
	switch tx.Type {
	case models.TransactionCredit, models.TransactionRefund:
		return tx.Amount
	}
	return -tx.Amount
}
