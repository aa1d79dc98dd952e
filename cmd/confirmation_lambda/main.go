package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/bootstrap"
	"github.com/chris/escrow-wallet/pkg/config"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/scheduler"
)

// Confirmer settles or fails a pending deposit.
type Confirmer interface {
	ConfirmDeposit(ctx context.Context, p auth.Principal, providerPaymentID string) (*models.Transaction, error)
}

var confirmer Confirmer

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(bootstrap.NewLogger(cfg.LogLevel))

	app, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialise application", "error", err)
		os.Exit(1)
	}
	confirmer = app.Payments
	lambda.Start(HandleRequest)
}

// HandleRequest polls the gateway for each queued deposit. Messages that
// failed for a reason a retry can fix are reported back so SQS redelivers
// only those.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		if err := process(ctx, confirmer, message); err != nil {
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}

func process(ctx context.Context, c Confirmer, message events.SQSMessage) error {
	var msg scheduler.ConfirmationMessage
	if err := json.Unmarshal([]byte(message.Body), &msg); err != nil || msg.ProviderPaymentID == "" {
		// Malformed messages never become valid; drop them.
		slog.ErrorContext(ctx, "dropping malformed confirmation message", "message_id", message.MessageId, "error", err)
		return nil
	}

	tx, err := c.ConfirmDeposit(ctx, auth.System, msg.ProviderPaymentID)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "deposit confirmation processed", "transaction_id", tx.Id, "status", tx.Status)
		return nil
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrIdempotencyConflict):
		slog.WarnContext(ctx, "dropping confirmation", "provider_payment_id", msg.ProviderPaymentID, "error", err)
		return nil
	default:
		slog.ErrorContext(ctx, "deposit confirmation failed", "provider_payment_id", msg.ProviderPaymentID, "error", err)
		return err
	}
}
