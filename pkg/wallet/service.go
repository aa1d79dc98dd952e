// Package wallet is the only code that changes a wallet balance. Each change
// is committed together with the ledger transaction describing it.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/google/uuid"
)

// Store is the storage a wallet Service needs.
type Store interface {
	storage.WalletReader
	storage.Committer
}

// Service manages wallets and their holds.
type Service struct {
	Store    Store
	Currency string
	Attempts int
	Now      func() time.Time
}

// NewService creates a Service. New wallets are opened in currency.
func NewService(store Store, currency string) *Service {
	return &Service{
		Store:    store,
		Currency: currency,
		Attempts: storage.DefaultAttempts,
		Now:      time.Now,
	}
}

// CreateWallet opens an empty wallet for userID.
func (s *Service) CreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrValidation)
	}
	if _, err := s.Store.GetWallet(ctx, userID); err == nil {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	w := s.newWallet(userID)
	uow := storage.NewUnitOfWork(s.Now())
	uow.PutWallet(w)
	if err := s.Store.Commit(ctx, uow); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	slog.InfoContext(ctx, "wallet created", "user_id", userID, "wallet_id", w.Id)
	return w, nil
}

// GetBalance returns the wallet of userID, creating an empty one on first access.
func (s *Service) GetBalance(ctx context.Context, userID string) (*models.Wallet, error) {
	var w *models.Wallet
	err := storage.RetryOnConflict(ctx, s.Attempts, func() error {
		existing, err := s.Store.GetWallet(ctx, userID)
		if err == nil {
			w = existing
			return nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}
		fresh := s.newWallet(userID)
		uow := storage.NewUnitOfWork(s.Now())
		uow.PutWallet(fresh)
		if err := s.Store.Commit(ctx, uow); err != nil {
			return err
		}
		w = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	if w.Balance < 0 {
		return nil, s.freezeNegative(ctx, w)
	}
	return w, nil
}

// Credit adds amount to the wallet and records a succeeded credit.
func (s *Service) Credit(ctx context.Context, userID string, amount int64, meta models.TxMeta) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.mutate(ctx, userID, true, func(uow *storage.UnitOfWork, w *models.Wallet) error {
		var err error
		tx, err = s.StageCredit(uow, w, amount, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Debit takes amount from the wallet and records a succeeded debit.
func (s *Service) Debit(ctx context.Context, userID string, amount int64, meta models.TxMeta) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.mutate(ctx, userID, false, func(uow *storage.UnitOfWork, w *models.Wallet) error {
		var err error
		tx, err = s.StageDebit(uow, w, amount, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// PlaceHold moves amount from the balance into a hold keyed by relatedID.
func (s *Service) PlaceHold(ctx context.Context, userID string, amount int64, reason, relatedID string, meta models.TxMeta) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.mutate(ctx, userID, false, func(uow *storage.UnitOfWork, w *models.Wallet) error {
		var err error
		tx, err = s.StagePlaceHold(uow, w, amount, reason, relatedID, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ReleaseHold removes the hold keyed by relatedID and sends its funds to dest.
func (s *Service) ReleaseHold(ctx context.Context, userID, relatedID string, dest Destination, meta models.TxMeta) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := storage.RetryOnConflict(ctx, s.Attempts, func() error {
		holder, err := s.LoadForUpdate(ctx, userID, false)
		if err != nil {
			return err
		}
		var target *models.Wallet
		if dest.IsOtherWallet() {
			target, err = s.LoadForUpdate(ctx, dest.userID, true)
			if err != nil {
				return err
			}
		}

		uow := storage.NewUnitOfWork(s.Now())
		txs, err = s.StageReleaseHold(uow, holder, relatedID, dest, target, meta)
		if err != nil {
			return err
		}
		return s.Store.Commit(ctx, uow)
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// Freeze marks the wallet so every further mutation is refused.
func (s *Service) Freeze(ctx context.Context, userID, reason string) error {
	return storage.RetryOnConflict(ctx, s.Attempts, func() error {
		w, err := s.Store.GetWallet(ctx, userID)
		if err != nil {
			return err
		}
		if w.Frozen {
			return nil
		}
		w.Frozen = true
		w.FrozenReason = reason
		uow := storage.NewUnitOfWork(s.Now())
		uow.PutWallet(w)
		if err := s.Store.Commit(ctx, uow); err != nil {
			return err
		}
		slog.WarnContext(ctx, "wallet frozen", "user_id", userID, "reason", reason)
		return nil
	})
}

// LoadForUpdate reads the wallet that is about to be staged into a unit of
// work. Missing wallets are created in memory when create is set; frozen or
// negative wallets are refused.
func (s *Service) LoadForUpdate(ctx context.Context, userID string, create bool) (*models.Wallet, error) {
	w, err := s.Store.GetWallet(ctx, userID)
	if err != nil {
		if create && errors.Is(err, models.ErrNotFound) {
			return s.newWallet(userID), nil
		}
		return nil, err
	}
	if w.Balance < 0 {
		return nil, s.freezeNegative(ctx, w)
	}
	if w.Frozen {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrWalletFrozen)
	}
	return w, nil
}

func (s *Service) mutate(ctx context.Context, userID string, create bool, stage func(*storage.UnitOfWork, *models.Wallet) error) error {
	return storage.RetryOnConflict(ctx, s.Attempts, func() error {
		w, err := s.LoadForUpdate(ctx, userID, create)
		if err != nil {
			return err
		}
		uow := storage.NewUnitOfWork(s.Now())
		if err := stage(uow, w); err != nil {
			return err
		}
		return s.Store.Commit(ctx, uow)
	})
}

func (s *Service) freezeNegative(ctx context.Context, w *models.Wallet) error {
	slog.ErrorContext(ctx, "negative wallet balance", "user_id", w.UserId, "balance", w.Balance)
	if !w.Frozen {
		if err := s.Freeze(ctx, w.UserId, "negative balance"); err != nil {
			slog.ErrorContext(ctx, "failed to freeze wallet", "user_id", w.UserId, "error", err)
		}
	}
	return fmt.Errorf("wallet for user ID %s has balance %d: %w", w.UserId, w.Balance, models.ErrInvariantViolation)
}

func (s *Service) newWallet(userID string) *models.Wallet {
	return &models.Wallet{
		Id:       uuid.New().String(),
		UserId:   userID,
		Currency: s.Currency,
		Holds:    []models.Hold{},
	}
}
