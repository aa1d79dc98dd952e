package scheduler

import (
	"context"
	"time"
)

// ConfirmationMessage is the body of a queued deposit confirmation poll.
type ConfirmationMessage struct {
	ProviderPaymentID string `json:"provider_payment_id"`
}

// Scheduler defines the interface for a component that schedules a deposit
// confirmation poll for later processing.
type Scheduler interface {
	// ScheduleConfirmation enqueues a confirmation of providerPaymentID to run after delay.
	ScheduleConfirmation(ctx context.Context, providerPaymentID string, delay time.Duration) error
}

// Noop drops every poll. Deposits are then confirmed by webhook or by the sweeper.
type Noop struct{}

func (Noop) ScheduleConfirmation(ctx context.Context, providerPaymentID string, delay time.Duration) error {
	return nil
}
