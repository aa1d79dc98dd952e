package storage

import (
	"context"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
)

// TransactionFilter selects transactions by exactly one owning entity.
type TransactionFilter struct {
	UserID      string
	WalletID    string
	ContractID  string
	MilestoneID string
}

// Empty reports whether no key is set.
func (f TransactionFilter) Empty() bool {
	return f.UserID == "" && f.WalletID == "" && f.ContractID == "" && f.MilestoneID == ""
}

// Matches reports whether tx belongs to every key set on the filter.
func (f TransactionFilter) Matches(tx *models.Transaction) bool {
	if f.UserID != "" && tx.UserId != f.UserID {
		return false
	}
	if f.WalletID != "" && tx.WalletId != f.WalletID {
		return false
	}
	if f.ContractID != "" && tx.RelatedContract != f.ContractID {
		return false
	}
	if f.MilestoneID != "" && tx.RelatedMilestone != f.MilestoneID {
		return false
	}
	return true
}

// TransactionReader defines the interface for reading ledger transactions.
type TransactionReader interface {
	// GetTransaction retrieves a transaction by its ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// GetTransactionByProviderPaymentID retrieves the transaction recorded for a gateway payment.
	GetTransactionByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Transaction, error)

	// ListTransactions returns the transactions matching the filter, newest first.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)

	// GetStaleTransactions retrieves transactions that have been in status for longer than maxAge.
	GetStaleTransactions(ctx context.Context, status models.TransactionStatus, maxAge time.Duration) ([]models.Transaction, error)

	// ScanTransactions returns every transaction. Used for aggregate reports.
	ScanTransactions(ctx context.Context) ([]models.Transaction, error)
}
