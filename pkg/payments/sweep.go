package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/gateway"
	"github.com/chris/escrow-wallet/pkg/models"
)

// SweepResult counts what a sweep did with the stale deposits it found.
type SweepResult struct {
	Checked   int `json:"checked"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// SweepStale settles gateway deposits that have been initiated for longer
// than window. Deposits the gateway reports as paid are credited; unpaid ones
// have their intent canceled and are marked failed. Deposits the gateway
// cannot answer for stay initiated for the next sweep.
func (s *Service) SweepStale(ctx context.Context, window time.Duration) (*SweepResult, error) {
	stale, err := s.Store.GetStaleTransactions(ctx, models.TransactionInitiated, window)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, tx := range stale {
		if tx.Provider != models.ProviderGateway || tx.ProviderPaymentId == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		status, err := s.sweepOne(ctx, &tx)
		if err != nil {
			slog.WarnContext(ctx, "stale deposit left initiated", "transaction_id", tx.Id, "provider_payment_id", tx.ProviderPaymentId, "error", err)
			result.Pending++
			continue
		}
		switch status {
		case models.TransactionSucceeded, models.TransactionRefunded:
			result.Succeeded++
		case models.TransactionFailed:
			result.Failed++
		case models.TransactionInitiated:
			result.Pending++
		}
	}

	slog.InfoContext(ctx, "stale deposit sweep finished",
		"checked", result.Checked, "succeeded", result.Succeeded, "failed", result.Failed, "pending", result.Pending)
	return result, nil
}

func (s *Service) sweepOne(ctx context.Context, tx *models.Transaction) (models.TransactionStatus, error) {
	current, err := s.ConfirmDeposit(ctx, auth.System, tx.ProviderPaymentId)
	if err != nil {
		return "", err
	}
	if current.Status != models.TransactionInitiated {
		return current.Status, nil
	}

	pi, err := s.Gateway.CancelPaymentIntent(ctx, tx.ProviderPaymentId)
	if err != nil {
		// The user may have paid in the meantime; look again.
		current, cerr := s.ConfirmDeposit(ctx, auth.System, tx.ProviderPaymentId)
		if cerr != nil {
			return "", cerr
		}
		if current.Status != models.TransactionInitiated {
			return current.Status, nil
		}
		return "", err
	}
	if pi.Status != gateway.IntentCanceled {
		return models.TransactionInitiated, nil
	}

	failed, err := s.fail(ctx, tx.Id)
	if err != nil {
		return "", err
	}
	return failed.Status, nil
}
