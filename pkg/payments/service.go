// Package payments moves money between the payment gateway and wallets:
// deposits, their confirmation, withdrawals and gateway refunds.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/gateway"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/locks"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/scheduler"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/wallet"
)

const (
	// RefundHoldReason marks funds reserved while a gateway refund is in flight.
	RefundHoldReason = "gateway-refund"

	DefaultPollDelay = 30 * time.Second
	DefaultLockTTL   = 30 * time.Second
)

// Store is the storage a payments Service needs.
type Store interface {
	storage.TransactionReader
	storage.WalletReader
	storage.Committer
}

// Service runs the deposit, withdrawal and refund flows. The gateway is
// always called outside of a unit of work.
type Service struct {
	Store     Store
	Wallets   *wallet.Service
	Ledger    *ledger.Service
	Gateway   gateway.Gateway
	Scheduler scheduler.Scheduler
	Locker    locks.Locker
	PollDelay time.Duration
	LockTTL   time.Duration
	Attempts  int
}

func NewService(store Store, wallets *wallet.Service, ledger *ledger.Service, gw gateway.Gateway, sched scheduler.Scheduler, locker locks.Locker) *Service {
	if sched == nil {
		sched = scheduler.Noop{}
	}
	if locker == nil {
		locker = locks.Noop{}
	}
	return &Service{
		Store:     store,
		Wallets:   wallets,
		Ledger:    ledger,
		Gateway:   gw,
		Scheduler: sched,
		Locker:    locker,
		PollDelay: DefaultPollDelay,
		LockTTL:   DefaultLockTTL,
		Attempts:  storage.DefaultAttempts,
	}
}

// DepositResult is a started deposit.
type DepositResult struct {
	Transaction  models.Transaction
	ClientSecret string
}

// RefundResult is a completed gateway refund of a deposit.
type RefundResult struct {
	Deposit  models.Transaction
	Payout   models.Transaction
	RefundID string
}

// Deposit starts a top-up of userID's wallet. A payment intent is created
// first; only then is an initiated credit recorded. The wallet is credited
// once the deposit is confirmed.
func (s *Service) Deposit(ctx context.Context, p auth.Principal, userID string, amount int64, currency string) (*DepositResult, error) {
	if err := p.RequireActFor(userID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive", models.ErrValidation)
	}

	w, err := s.Wallets.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.Frozen {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrWalletFrozen)
	}
	if currency == "" {
		currency = w.Currency
	}
	if !strings.EqualFold(currency, w.Currency) {
		return nil, fmt.Errorf("%w: deposit currency %s does not match wallet currency %s", models.ErrValidation, currency, w.Currency)
	}

	pi, err := s.Gateway.CreatePaymentIntent(ctx, amount, w.Currency, map[string]string{
		"user_id":   userID,
		"wallet_id": w.Id,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create payment intent", "user_id", userID, "error", err)
		return nil, err
	}

	tx := &models.Transaction{
		WalletId:          w.Id,
		UserId:            userID,
		Amount:            amount,
		Currency:          w.Currency,
		Type:              models.TransactionCredit,
		Reason:            "deposit",
		Provider:          models.ProviderGateway,
		ProviderPaymentId: pi.ID,
		Status:            models.TransactionInitiated,
	}
	if _, err := s.Ledger.Record(ctx, tx); err != nil {
		return nil, err
	}

	if err := s.Scheduler.ScheduleConfirmation(ctx, pi.ID, s.PollDelay); err != nil {
		// Webhooks and the sweeper still confirm the deposit.
		slog.WarnContext(ctx, "failed to schedule deposit confirmation", "provider_payment_id", pi.ID, "error", err)
	}

	slog.InfoContext(ctx, "deposit initiated", "user_id", userID, "transaction_id", tx.Id, "provider_payment_id", pi.ID, "amount", amount)
	return &DepositResult{Transaction: *tx, ClientSecret: pi.ClientSecret}, nil
}

// ConfirmDeposit settles the deposit recorded for providerPaymentID according
// to the gateway. It is idempotent: a deposit that already left initiated is
// returned unchanged, and the credit is applied only by the commit that moves
// the transaction out of initiated. A gateway failure leaves the deposit
// initiated and is returned so the caller can retry.
func (s *Service) ConfirmDeposit(ctx context.Context, p auth.Principal, providerPaymentID string) (*models.Transaction, error) {
	if providerPaymentID == "" {
		return nil, fmt.Errorf("%w: provider payment id is required", models.ErrValidation)
	}
	tx, err := s.Store.GetTransactionByProviderPaymentID(ctx, providerPaymentID)
	if err != nil {
		return nil, err
	}
	if err := p.RequireActFor(tx.UserId); err != nil {
		return nil, err
	}
	if tx.Status != models.TransactionInitiated {
		return tx, nil
	}

	release, ok, err := s.Locker.Acquire(ctx, "confirm:"+providerPaymentID, s.LockTTL)
	if err != nil {
		slog.WarnContext(ctx, "confirming without lock", "provider_payment_id", providerPaymentID, "error", err)
	} else if !ok {
		// Another confirmation of the same payment is running.
		return tx, nil
	} else {
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "failed to release confirmation lock", "provider_payment_id", providerPaymentID, "error", err)
			}
		}()
	}

	pi, err := s.Gateway.RetrievePaymentIntent(ctx, providerPaymentID)
	if err != nil {
		slog.WarnContext(ctx, "deposit left initiated after gateway error", "provider_payment_id", providerPaymentID, "error", err)
		return nil, err
	}
	if pi.Amount != tx.Amount || !strings.EqualFold(pi.Currency, tx.Currency) {
		return nil, fmt.Errorf("payment %s is %d %s, deposit is %d %s: %w",
			providerPaymentID, pi.Amount, pi.Currency, tx.Amount, tx.Currency, models.ErrIdempotencyConflict)
	}

	switch pi.Status {
	case gateway.IntentSucceeded:
		return s.settle(ctx, tx.Id)
	case gateway.IntentFailed, gateway.IntentCanceled:
		return s.fail(ctx, tx.Id)
	case gateway.IntentPending:
		return tx, nil
	}
	return tx, nil
}

// settle credits the deposit. A concurrent confirmation that got there first
// makes this a no-op.
func (s *Service) settle(ctx context.Context, txID string) (*models.Transaction, error) {
	var result *models.Transaction
	err := storage.RetryOnConflict(ctx, s.Attempts, func() error {
		tx, err := s.Store.GetTransaction(ctx, txID)
		if err != nil {
			return err
		}
		if tx.Status != models.TransactionInitiated {
			result = tx
			return nil
		}
		w, err := s.Wallets.LoadForUpdate(ctx, tx.UserId, false)
		if err != nil {
			return err
		}
		uow := storage.NewUnitOfWork(s.Wallets.Now())
		if err := s.Wallets.StageSettle(uow, w, tx); err != nil {
			return err
		}
		if err := s.Store.Commit(ctx, uow); err != nil {
			return err
		}
		tx.Status = models.TransactionSucceeded
		tx.UpdatedAt = uow.Now
		result = tx
		slog.InfoContext(ctx, "deposit confirmed", "transaction_id", tx.Id, "user_id", tx.UserId, "amount", tx.Amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) fail(ctx context.Context, txID string) (*models.Transaction, error) {
	tx, err := s.Ledger.UpdateStatus(ctx, txID, models.TransactionFailed)
	if errors.Is(err, models.ErrInvalidTransition) {
		// Settled by someone else in the meantime.
		return s.Store.GetTransaction(ctx, txID)
	}
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "deposit failed", "transaction_id", tx.Id, "user_id", tx.UserId)
	return tx, nil
}

// HandleGatewayEvent confirms the deposit a verified webhook is about.
// Events for payments this service never recorded are ignored.
func (s *Service) HandleGatewayEvent(ctx context.Context, event *gateway.WebhookEvent) error {
	if event.PaymentIntentID == "" {
		return nil
	}
	_, err := s.ConfirmDeposit(ctx, auth.System, event.PaymentIntentID)
	if errors.Is(err, models.ErrNotFound) {
		slog.InfoContext(ctx, "ignoring event for unknown payment", "event_id", event.ID, "provider_payment_id", event.PaymentIntentID)
		return nil
	}
	return err
}

// Withdraw pays amount out of the wallet to the user's bank.
func (s *Service) Withdraw(ctx context.Context, p auth.Principal, userID string, amount int64, reason string) (*models.Transaction, error) {
	if err := p.RequireActFor(userID); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "withdrawal"
	}
	if _, err := s.Wallets.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	tx, err := s.Wallets.Debit(ctx, userID, amount, models.TxMeta{Reason: reason, Provider: models.ProviderBank})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "withdrawal completed", "user_id", userID, "transaction_id", tx.Id, "amount", amount)
	return tx, nil
}

// RefundDeposit gives a confirmed deposit back through the gateway. The
// amount is held on the wallet while the gateway is called, so it cannot be
// spent twice; the hold is returned if the gateway refuses.
func (s *Service) RefundDeposit(ctx context.Context, p auth.Principal, txID string) (*RefundResult, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	deposit, err := s.Store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if deposit.Type != models.TransactionCredit || deposit.Provider != models.ProviderGateway || deposit.ProviderPaymentId == "" {
		return nil, fmt.Errorf("%w: transaction %s is not a gateway deposit", models.ErrValidation, txID)
	}
	if !deposit.Status.CanTransitionTo(models.TransactionRefunded) {
		return nil, fmt.Errorf("deposit %s is %s: %w", txID, deposit.Status, models.ErrInvalidTransition)
	}

	holdRef := "refund:" + deposit.Id
	if _, err := s.Wallets.PlaceHold(ctx, deposit.UserId, deposit.Amount, RefundHoldReason, holdRef, models.TxMeta{
		Reason: "gateway refund reserve",
	}); err != nil {
		return nil, err
	}

	refundID, err := s.Gateway.CreateRefund(ctx, deposit.ProviderPaymentId)
	if err != nil {
		if _, rerr := s.Wallets.ReleaseHold(ctx, deposit.UserId, holdRef, wallet.SameWallet(), models.TxMeta{Reason: "gateway refund failed"}); rerr != nil {
			slog.ErrorContext(ctx, "failed to return refund reserve", "transaction_id", deposit.Id, "error", rerr)
		}
		return nil, err
	}

	result := &RefundResult{RefundID: refundID}
	err = storage.RetryOnConflict(ctx, s.Attempts, func() error {
		w, err := s.Wallets.LoadForUpdate(ctx, deposit.UserId, false)
		if err != nil {
			return err
		}
		current, err := s.Store.GetTransaction(ctx, deposit.Id)
		if err != nil {
			return err
		}

		uow := storage.NewUnitOfWork(s.Wallets.Now())
		txs, err := s.Wallets.StageReleaseHold(uow, w, holdRef, wallet.External(), nil, models.TxMeta{
			Reason:            "gateway refund",
			Provider:          models.ProviderGateway,
			ProviderPaymentId: refundID,
		})
		if err != nil {
			return err
		}
		uow.ChangeStatus(current.Id, current.Status, models.TransactionRefunded)
		if err := s.Store.Commit(ctx, uow); err != nil {
			return err
		}

		current.Status = models.TransactionRefunded
		current.UpdatedAt = uow.Now
		result.Deposit = *current
		result.Payout = txs[0]
		return nil
	})
	if err != nil {
		// The money has left at the gateway; the reserve hold stays until an
		// operator records the refund.
		slog.ErrorContext(ctx, "gateway refund not recorded", "transaction_id", deposit.Id, "refund_id", refundID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "deposit refunded", "transaction_id", deposit.Id, "refund_id", refundID, "amount", deposit.Amount)
	return result, nil
}
