package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/escrow-wallet/pkg/bootstrap"
	"github.com/chris/escrow-wallet/pkg/config"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/payments"
)

var (
	app *bootstrap.App
	cfg *config.Config
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(bootstrap.NewLogger(cfg.LogLevel))

	app, err = bootstrap.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialise application", "error", err)
		os.Exit(1)
	}
}

// Result summarises one scheduled run.
type Result struct {
	Sweep        *payments.SweepResult `json:"sweep"`
	Wallets      int                   `json:"wallets"`
	Inconsistent []ledger.Report       `json:"inconsistent,omitempty"`
}

// HandleRequest is triggered by an EventBridge Schedule. It resolves deposits
// stuck past the confirmation window and then checks every wallet against
// the ledger.
func HandleRequest(ctx context.Context) (*Result, error) {
	slog.InfoContext(ctx, "Starting reconciliation run")

	sweep, sweepErr := app.Payments.SweepStale(ctx, cfg.DepositConfirmationWindow)
	if sweepErr != nil {
		slog.ErrorContext(ctx, "stale deposit sweep failed", "error", sweepErr)
	}

	reports, reconcileErr := app.Ledger.ReconcileAll(ctx)
	result := &Result{Sweep: sweep, Wallets: len(reports)}
	for _, r := range reports {
		if !r.Consistent {
			result.Inconsistent = append(result.Inconsistent, r)
		}
	}
	if len(result.Inconsistent) > 0 {
		slog.ErrorContext(ctx, "wallets frozen by reconciliation", "count", len(result.Inconsistent))
	}

	slog.InfoContext(ctx, "Reconciliation run finished", "wallets", result.Wallets, "inconsistent", len(result.Inconsistent))
	return result, errors.Join(sweepErr, reconcileErr)
}

func main() {
	lambda.Start(HandleRequest)
}
