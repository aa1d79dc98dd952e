// Package ledger records transactions, moves them through their status
// machine and checks that wallets agree with their history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/wallet"
	"github.com/google/uuid"
)

// Store is the storage a ledger Service needs.
type Store interface {
	storage.TransactionReader
	storage.WalletReader
	storage.Committer
}

// DefaultSettleWindow is how long after a write a wallet is given for the
// transaction indexes to catch up before a mismatch freezes it.
const DefaultSettleWindow = time.Minute

// Service is the transaction ledger.
type Service struct {
	Store        Store
	Wallets      *wallet.Service
	Attempts     int
	SettleWindow time.Duration
	Now          func() time.Time
}

// NewService creates a ledger Service. Settling transactions and freezing
// wallets go through wallets.
func NewService(store Store, wallets *wallet.Service) *Service {
	return &Service{
		Store:        store,
		Wallets:      wallets,
		Attempts:     storage.DefaultAttempts,
		SettleWindow: DefaultSettleWindow,
		Now:          time.Now,
	}
}

// Record validates tx and appends it to the ledger. Only initiated and failed
// transactions can be recorded directly; a succeeded transaction moves money
// and is written by the wallet service together with the balance change.
// An empty WalletId is filled in from the user's wallet.
func (s *Service) Record(ctx context.Context, tx *models.Transaction) (string, error) {
	if err := s.validate(ctx, tx); err != nil {
		return "", err
	}

	uow := storage.NewUnitOfWork(s.Now())
	if tx.Id == "" {
		tx.Id = uuid.New().String()
	}
	tx.CreatedAt = uow.Now
	tx.UpdatedAt = uow.Now
	uow.AddTransaction(*tx)

	if err := s.Store.Commit(ctx, uow); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return "", fmt.Errorf("transaction %s: %w", tx.Id, models.ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to record transaction: %w", err)
	}

	slog.InfoContext(ctx, "transaction recorded",
		"transaction_id", tx.Id, "user_id", tx.UserId, "type", tx.Type, "status", tx.Status, "amount", tx.Amount)
	return tx.Id, nil
}

func (s *Service) validate(ctx context.Context, tx *models.Transaction) error {
	if tx.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	if tx.UserId == "" {
		return fmt.Errorf("%w: user id is required", models.ErrValidation)
	}
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", models.ErrValidation, tx.Type)
	}
	if tx.Provider == "" {
		tx.Provider = models.ProviderInternal
	}
	if !tx.Provider.Valid() {
		return fmt.Errorf("%w: unknown provider %q", models.ErrValidation, tx.Provider)
	}
	if tx.Status == "" {
		tx.Status = models.TransactionInitiated
	}
	switch tx.Status {
	case models.TransactionInitiated, models.TransactionFailed:
	case models.TransactionSucceeded, models.TransactionRefunded:
		return fmt.Errorf("%w: a %s transaction cannot be recorded without a balance change", models.ErrValidation, tx.Status)
	default:
		return fmt.Errorf("%w: unknown status %q", models.ErrValidation, tx.Status)
	}

	w, err := s.Store.GetWallet(ctx, tx.UserId)
	if err != nil {
		return err
	}
	if tx.WalletId == "" {
		tx.WalletId = w.Id
	}
	if w.Id != tx.WalletId {
		return fmt.Errorf("%w: wallet %s does not belong to user %s", models.ErrValidation, tx.WalletId, tx.UserId)
	}
	if tx.Currency == "" {
		tx.Currency = w.Currency
	}
	if tx.Currency != w.Currency {
		return fmt.Errorf("%w: currency %s does not match wallet currency %s", models.ErrValidation, tx.Currency, w.Currency)
	}
	return nil
}

// UpdateStatus moves a transaction to status. Moving an initiated
// transaction to succeeded applies its balance effect in the same commit.
func (s *Service) UpdateStatus(ctx context.Context, txID string, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}

	var updated *models.Transaction
	err := storage.RetryOnConflict(ctx, s.Attempts, func() error {
		tx, err := s.Store.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if !tx.Status.CanTransitionTo(status) {
			return fmt.Errorf("transaction %s from %s to %s: %w", txID, tx.Status, status, models.ErrInvalidTransition)
		}

		uow := storage.NewUnitOfWork(s.Now())
		if status == models.TransactionSucceeded {
			w, err := s.Wallets.LoadForUpdate(ctx, tx.UserId, false)
			if err != nil {
				return err
			}
			if err := s.Wallets.StageSettle(uow, w, tx); err != nil {
				return err
			}
		} else {
			uow.ChangeStatus(tx.Id, tx.Status, status)
		}
		if err := s.Store.Commit(ctx, uow); err != nil {
			return err
		}

		slog.InfoContext(ctx, "transaction status updated", "transaction_id", txID, "from", tx.Status, "to", status)
		tx.Status = status
		tx.UpdatedAt = uow.Now
		updated = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetTransaction returns one transaction.
func (s *Service) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	return s.Store.GetTransaction(ctx, txID)
}

// QueryByWallet returns the transactions of a wallet, newest first.
func (s *Service) QueryByWallet(ctx context.Context, walletID string) ([]models.Transaction, error) {
	return s.query(ctx, storage.TransactionFilter{WalletID: walletID})
}

// QueryByUser returns the transactions of a user, newest first.
func (s *Service) QueryByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.query(ctx, storage.TransactionFilter{UserID: userID})
}

// QueryByContract returns the transactions related to a contract, newest first.
func (s *Service) QueryByContract(ctx context.Context, contractID string) ([]models.Transaction, error) {
	return s.query(ctx, storage.TransactionFilter{ContractID: contractID})
}

// QueryByMilestone returns the transactions related to a milestone, newest first.
func (s *Service) QueryByMilestone(ctx context.Context, milestoneID string) ([]models.Transaction, error) {
	return s.query(ctx, storage.TransactionFilter{MilestoneID: milestoneID})
}

// Query returns the transactions matching filter, newest first.
func (s *Service) Query(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	return s.query(ctx, filter)
}

func (s *Service) query(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	if filter.Empty() {
		return nil, fmt.Errorf("%w: an id to query by is required", models.ErrValidation)
	}
	txs, err := s.Store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}
