// Package bootstrap builds the services and the HTTP router from a Config.
// Every entrypoint goes through it so they share one wiring.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/config"
	"github.com/chris/escrow-wallet/pkg/escrow"
	"github.com/chris/escrow-wallet/pkg/gateway"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/locks"
	"github.com/chris/escrow-wallet/pkg/payments"
	"github.com/chris/escrow-wallet/pkg/scheduler"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/storage/dynamodb"
	"github.com/chris/escrow-wallet/pkg/storage/memory"
	"github.com/chris/escrow-wallet/pkg/wallet"
	"github.com/chris/escrow-wallet/pkg/websockets"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v76/client"
)

// App is the wired service graph.
type App struct {
	Config    *config.Config
	Store     storage.Storage
	Gateway   gateway.Gateway
	Webhooks  gateway.WebhookParser
	Scheduler scheduler.Scheduler
	Locker    locks.Locker
	Wallets   *wallet.Service
	Ledger    *ledger.Service
	Escrow    *escrow.Coordinator
	Payments  *payments.Service
	Verifier  *auth.Verifier
	Hub       *websockets.Hub

	closers []func() error
}

// NewLogger returns the JSON logger every entrypoint installs as the default.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// New connects to the configured backends and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Hub: websockets.NewHub()}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	switch cfg.StorageBackend {
	case config.BackendDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		app.Store = dynamodb.New(awsdynamodb.NewFromConfig(c), dynamodb.Tables{
			Wallets:      cfg.WalletsTable,
			Transactions: cfg.TransactionsTable,
			Contracts:    cfg.ContractsTable,
			Milestones:   cfg.MilestonesTable,
		})
	case config.BackendMemory:
		slog.Warn("using in-memory storage; data is lost on restart")
		app.Store = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if cfg.SQSQueueURL != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		app.Scheduler = scheduler.NewSQSScheduler(sqs.NewFromConfig(c), cfg.SQSQueueURL)
	} else {
		slog.Warn("SQS_QUEUE_URL not set; deposits are confirmed by webhook and sweeper only")
		app.Scheduler = scheduler.Noop{}
	}

	if cfg.RedisAddr != "" {
		rdb, err := locks.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		app.Locker = locks.NewRedis(rdb)
	} else {
		app.Locker = locks.Noop{}
	}

	switch cfg.GatewayProvider {
	case config.GatewayStripe:
		stripeGateway := gateway.NewStripe(client.New(cfg.StripeSecretKey, nil), cfg.StripeWebhookSecret, cfg.GatewayTimeout)
		app.Gateway = stripeGateway
		app.Webhooks = stripeGateway
	case config.GatewayFake:
		slog.Warn("using the fake payment gateway")
		app.Gateway = gateway.NewFake()
	default:
		return nil, fmt.Errorf("unknown gateway provider %q", cfg.GatewayProvider)
	}

	app.Wallets = wallet.NewService(app.Store, cfg.DefaultCurrency)
	app.Ledger = ledger.NewService(app.Store, app.Wallets)
	app.Escrow = escrow.NewCoordinator(app.Store, app.Wallets)
	app.Payments = payments.NewService(app.Store, app.Wallets, app.Ledger, app.Gateway, app.Scheduler, app.Locker)
	app.Payments.PollDelay = cfg.ConfirmationPollDelay
	app.Ledger.SettleWindow = cfg.ReconcileSettleWindow
	app.Verifier = auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	return app, nil
}

// Redis returns the redis client backing the locker, if any.
func (a *App) Redis() redis.UniversalClient {
	if r, ok := a.Locker.(*locks.Redis); ok {
		return r.Client
	}
	return nil
}

// Close releases the backend connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// HealthCheck pings the backends that can be pinged.
func (a *App) HealthCheck(ctx context.Context) error {
	if rdb := a.Redis(); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.HealthCheck(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
