package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chris/escrow-wallet/pkg/models"
)

// Fake is an in-memory Gateway for local runs and tests. Intents start
// pending; SetStatus plays the part of the user completing the payment.
type Fake struct {
	mu      sync.Mutex
	intents map[string]*PaymentIntent
	refunds map[string]string
	seq     int
	err     error
	calls   map[string]int
}

func NewFake() *Fake {
	return &Fake{
		intents: make(map[string]*PaymentIntent),
		refunds: make(map[string]string),
		calls:   make(map[string]int),
	}
}

var _ Gateway = (*Fake)(nil)

// SetStatus changes the status of an intent.
func (f *Fake) SetStatus(intentID string, status IntentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pi, ok := f.intents[intentID]; ok {
		pi.Status = status
	}
}

// SetAmount overwrites the amount the provider reports for an intent.
func (f *Fake) SetAmount(intentID string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pi, ok := f.intents[intentID]; ok {
		pi.Amount = amount
	}
}

// FailWith makes every call fail with err until it is cleared with nil.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls returns how often method was called.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) begin(ctx context.Context, method string) error {
	f.calls[method]++
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrGateway, method, err)
	}
	if f.err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrGateway, method, f.err)
	}
	return nil
}

func (f *Fake) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "CreatePaymentIntent"); err != nil {
		return nil, err
	}

	f.seq++
	pi := &PaymentIntent{
		ID:           fmt.Sprintf("pi_fake_%d", f.seq),
		ClientSecret: fmt.Sprintf("pi_fake_%d_secret", f.seq),
		Amount:       amount,
		Currency:     strings.ToLower(currency),
		Status:       IntentPending,
	}
	f.intents[pi.ID] = pi
	c := *pi
	return &c, nil
}

func (f *Fake) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "RetrievePaymentIntent"); err != nil {
		return nil, err
	}

	pi, ok := f.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent %s", models.ErrGateway, intentID)
	}
	c := *pi
	return &c, nil
}

func (f *Fake) CancelPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "CancelPaymentIntent"); err != nil {
		return nil, err
	}

	pi, ok := f.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent %s", models.ErrGateway, intentID)
	}
	if pi.Status == IntentSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s already succeeded", models.ErrGateway, intentID)
	}
	pi.Status = IntentCanceled
	c := *pi
	return &c, nil
}

func (f *Fake) CreateRefund(ctx context.Context, intentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "CreateRefund"); err != nil {
		return "", err
	}

	pi, ok := f.intents[intentID]
	if !ok || pi.Status != IntentSucceeded {
		return "", fmt.Errorf("%w: payment intent %s cannot be refunded", models.ErrGateway, intentID)
	}
	if _, done := f.refunds[intentID]; done {
		return "", fmt.Errorf("%w: payment intent %s already refunded", models.ErrGateway, intentID)
	}
	f.seq++
	id := fmt.Sprintf("re_fake_%d", f.seq)
	f.refunds[intentID] = id
	return id, nil
}
