package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrInvalidSignature is returned for webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Stripe implements Gateway and WebhookParser on the Stripe API.
type Stripe struct {
	API           *client.API
	WebhookSecret string
	Timeout       time.Duration
}

// NewStripe wraps an already configured Stripe client.
func NewStripe(api *client.API, webhookSecret string, timeout time.Duration) *Stripe {
	return &Stripe{API: api, WebhookSecret: webhookSecret, Timeout: timeout}
}

// Make sure we conform to the interfaces
var (
	_ Gateway       = (*Stripe)(nil)
	_ WebhookParser = (*Stripe)(nil)
)

func (s *Stripe) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.API.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent: %w", models.ErrGateway, err)
	}
	return fromStripe(pi), nil
}

func (s *Stripe) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.API.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve payment intent %s: %w", models.ErrGateway, intentID, err)
	}
	return fromStripe(pi), nil
}

func (s *Stripe) CancelPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	pi, err := s.API.PaymentIntents.Cancel(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: cancel payment intent %s: %w", models.ErrGateway, intentID, err)
	}
	return fromStripe(pi), nil
}

func (s *Stripe) CreateRefund(ctx context.Context, intentID string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	r, err := s.API.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: refund payment intent %s: %w", models.ErrGateway, intentID, err)
	}
	return r.ID, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the payment
// intent the event is about.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: malformed payment intent in event %s: %v", models.ErrValidation, event.ID, err)
	}
	out.PaymentIntentID = pi.ID
	return out, nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       statusFromStripe(pi.Status),
	}
}

func statusFromStripe(s stripe.PaymentIntentStatus) IntentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return IntentCanceled
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod:
		return IntentPending
	}
	return IntentPending
}
