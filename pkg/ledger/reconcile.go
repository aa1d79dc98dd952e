package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// Report compares a wallet with the sums of its settled transactions.
type Report struct {
	UserID          string    `json:"user_id"`
	WalletID        string    `json:"wallet_id"`
	Balance         int64     `json:"balance"`
	Held            int64     `json:"held"`
	ExpectedBalance int64     `json:"expected_balance"`
	ExpectedHeld    int64     `json:"expected_held"`
	Transactions    int       `json:"transactions"`
	Consistent      bool      `json:"consistent"`
	Settling        bool      `json:"settling"`
	Frozen          bool      `json:"frozen"`
	CheckedAt       time.Time `json:"checked_at"`
}

// Reconcile recomputes the wallet of userID from the ledger. A wallet whose
// balance or held total disagrees with its transactions, or whose balance is
// negative, is frozen and ErrInvariantViolation is returned with the report.
//
// The transaction indexes trail the wallet table. A mismatch on a wallet
// written within SettleWindow is reported as settling and left alone.
func (s *Service) Reconcile(ctx context.Context, userID string) (*Report, error) {
	var report *Report
	err := storage.RetryOnConflict(ctx, s.Attempts, func() error {
		r, err := s.compute(ctx, userID)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Consistent {
		return report, nil
	}
	if report.Settling {
		slog.InfoContext(ctx, "wallet changed recently, skipping reconciliation",
			"user_id", report.UserID, "settle_window", s.SettleWindow)
		return report, nil
	}

	slog.ErrorContext(ctx, "wallet does not reconcile with ledger",
		"user_id", report.UserID,
		"balance", report.Balance, "expected_balance", report.ExpectedBalance,
		"held", report.Held, "expected_held", report.ExpectedHeld)
	if !report.Frozen {
		if err := s.Wallets.Freeze(ctx, userID, "ledger mismatch"); err != nil {
			return report, fmt.Errorf("failed to freeze wallet %s: %w", userID, err)
		}
		report.Frozen = true
	}
	return report, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrInvariantViolation)
}

// compute reads the wallet on both sides of the ledger query so the report
// describes a single version of it.
func (s *Service) compute(ctx context.Context, userID string) (*Report, error) {
	before, err := s.Store.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.Store.ListTransactions(ctx, storage.TransactionFilter{WalletID: before.Id})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	after, err := s.Store.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if after.Version != before.Version {
		return nil, fmt.Errorf("wallet %s changed while reconciling: %w", userID, storage.ErrConflict)
	}

	r := &Report{
		UserID:       userID,
		WalletID:     after.Id,
		Balance:      after.Balance,
		Held:         after.HeldTotal(),
		Transactions: len(txs),
		Frozen:       after.Frozen,
		CheckedAt:    s.Now().UTC(),
	}
	for i := range txs {
		available, held := txs[i].Effect()
		r.ExpectedBalance += available
		r.ExpectedHeld += held
	}
	r.Consistent = r.Balance >= 0 && r.Balance == r.ExpectedBalance && r.Held == r.ExpectedHeld
	// A negative balance is wrong however stale the index is.
	r.Settling = !r.Consistent && r.Balance >= 0 && r.CheckedAt.Sub(after.UpdatedAt) < s.SettleWindow
	return r, nil
}

// ReconcileAll reconciles every wallet. It keeps going past failures and
// returns them joined.
func (s *Service) ReconcileAll(ctx context.Context) ([]Report, error) {
	wallets, err := s.Store.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	reports := make([]Report, 0, len(wallets))
	var errs []error
	settling := 0
	for _, w := range wallets {
		r, err := s.Reconcile(ctx, w.UserId)
		if r != nil {
			reports = append(reports, *r)
			if r.Settling {
				settling++
			}
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	slog.InfoContext(ctx, "reconciliation finished", "wallets", len(wallets), "settling", settling, "failures", len(errs))
	return reports, errors.Join(errs...)
}
