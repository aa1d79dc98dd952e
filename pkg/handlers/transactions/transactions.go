package transactions

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/handlers/respond"
	"github.com/chris/escrow-wallet/pkg/mapping"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/payments"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/websockets"
)

// PaymentService moves money in and out of wallets.
type PaymentService interface {
	Deposit(ctx context.Context, p auth.Principal, userID string, amount int64, currency string) (*payments.DepositResult, error)
	ConfirmDeposit(ctx context.Context, p auth.Principal, providerPaymentID string) (*models.Transaction, error)
	Withdraw(ctx context.Context, p auth.Principal, userID string, amount int64, reason string) (*models.Transaction, error)
	RefundDeposit(ctx context.Context, p auth.Principal, txID string) (*payments.RefundResult, error)
}

// LedgerReader reads the transaction ledger.
type LedgerReader interface {
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)
	Query(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error)
}

// TransactionsHandler holds the dependencies for transaction-related handlers.
type TransactionsHandler struct {
	Payments PaymentService
	Ledger   LedgerReader
	Notifier *websockets.Notifier
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(payments PaymentService, ledger LedgerReader, notifier *websockets.Notifier) *TransactionsHandler {
	return &TransactionsHandler{Payments: payments, Ledger: ledger, Notifier: notifier}
}

// CreateDeposit starts a deposit and returns the client secret the frontend
// completes the payment with.
func (h *TransactionsHandler) CreateDeposit(w http.ResponseWriter, r *http.Request, userId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var body api.NewDeposit
	if !respond.Decode(w, r, &body) {
		return
	}
	currency := ""
	if body.Currency != nil {
		currency = strings.ToLower(*body.Currency)
	}

	res, err := h.Payments.Deposit(r.Context(), p, userId, body.Amount, currency)
	if err != nil {
		respond.Error(w, r, "Failed to create deposit", err)
		return
	}
	respond.JSON(w, http.StatusCreated, api.DepositResponse{
		TransactionId:        res.Transaction.Id,
		ProviderClientSecret: res.ClientSecret,
		ProviderPaymentId:    res.Transaction.ProviderPaymentId,
		Status:               string(res.Transaction.Status),
	})
}

// ConfirmDeposit settles a deposit after the user completed the payment.
// Confirming twice returns the same transaction.
func (h *TransactionsHandler) ConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var body api.ConfirmDeposit
	if !respond.Decode(w, r, &body) {
		return
	}

	tx, err := h.Payments.ConfirmDeposit(r.Context(), p, body.ProviderPaymentId)
	if err != nil {
		respond.Error(w, r, "Failed to confirm deposit", err)
		return
	}
	if tx.Status == models.TransactionSucceeded {
		h.Notifier.WalletChanged(r.Context(), tx.UserId, tx.Id, tx.Amount)
	}
	respond.JSON(w, http.StatusOK, api.ConfirmDepositResponse{TransactionId: tx.Id, Status: string(tx.Status)})
}

// CreateWithdrawal pays money out of a wallet.
func (h *TransactionsHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request, userId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var body api.NewWithdrawal
	if !respond.Decode(w, r, &body) {
		return
	}
	reason := ""
	if body.Reason != nil {
		reason = *body.Reason
	}

	tx, err := h.Payments.Withdraw(r.Context(), p, userId, body.Amount, reason)
	if err != nil {
		respond.Error(w, r, "Failed to withdraw", err)
		return
	}
	h.Notifier.WalletChanged(r.Context(), userId, tx.Id, -tx.Amount)
	respond.JSON(w, http.StatusCreated, api.WithdrawalResponse{TransactionId: tx.Id})
}

// RefundTransaction refunds a confirmed deposit through the gateway.
func (h *TransactionsHandler) RefundTransaction(w http.ResponseWriter, r *http.Request, transactionId api.TransactionId) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	res, err := h.Payments.RefundDeposit(r.Context(), p, transactionId.String())
	if err != nil {
		respond.Error(w, r, "Failed to refund transaction", err)
		return
	}
	h.Notifier.WalletChanged(r.Context(), res.Deposit.UserId, res.Payout.Id, 0)
	respond.JSON(w, http.StatusOK, api.RefundResponse{
		Deposit:  *mapping.ToApiTransaction(&res.Deposit),
		Payout:   *mapping.ToApiTransaction(&res.Payout),
		RefundId: res.RefundID,
	})
}

// GetTransactionById returns one transaction to its owner or an admin.
func (h *TransactionsHandler) GetTransactionById(w http.ResponseWriter, r *http.Request, transactionId api.TransactionId) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	tx, err := h.Ledger.GetTransaction(r.Context(), transactionId.String())
	if err != nil {
		respond.Error(w, r, "Failed to retrieve transaction", err)
		return
	}
	if err := p.RequireActFor(tx.UserId); err != nil {
		respond.Error(w, r, "Failed to retrieve transaction", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransaction(tx))
}

// ListTransactions returns the transactions of a user, wallet, contract or
// milestone, newest first. Non-admin callers only see their own entries.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request, params api.ListTransactionsParams) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	filter := storage.TransactionFilter{
		UserID:      deref(params.UserId),
		WalletID:    deref(params.WalletId),
		ContractID:  deref(params.ContractId),
		MilestoneID: deref(params.MilestoneId),
	}
	if filter.UserID != "" {
		if err := p.RequireActFor(filter.UserID); err != nil {
			respond.Error(w, r, "Failed to retrieve transactions", err)
			return
		}
	}

	txs, err := h.Ledger.Query(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, "Failed to retrieve transactions", err)
		return
	}
	if !p.Privileged() {
		own := txs[:0]
		for _, tx := range txs {
			if tx.UserId == p.UserID {
				own = append(own, tx)
			}
		}
		txs = own
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransactions(txs))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
