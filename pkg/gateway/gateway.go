// Package gateway talks to the external payment provider that moves money
// into and out of the platform.
package gateway

import "context"

// IntentStatus is the provider-independent state of a payment intent.
type IntentStatus string

const (
	// IntentPending covers every state in which the payment may still succeed.
	IntentPending   IntentStatus = "pending"
	IntentSucceeded IntentStatus = "succeeded"
	IntentFailed    IntentStatus = "failed"
	IntentCanceled  IntentStatus = "canceled"
)

// PaymentIntent is a payment the user completes with the provider.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       IntentStatus
}

// Gateway is the payment provider. Calls are slow and may fail; errors wrap
// models.ErrGateway.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	// CancelPaymentIntent stops an unpaid intent from being paid later. It
	// fails for intents that already succeeded.
	CancelPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	// CreateRefund refunds the whole intent and returns the refund id.
	CreateRefund(ctx context.Context, intentID string) (string, error)
}

// WebhookEvent is a verified provider callback about a payment intent.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// WebhookParser verifies and decodes provider callbacks.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
