// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage and gateway backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"

	GatewayStripe = "stripe"
	GatewayFake   = "fake"
)

// Config is the process configuration shared by every entrypoint.
type Config struct {
	HTTPPort string

	StorageBackend     string
	WalletsTable       string
	TransactionsTable  string
	ContractsTable     string
	MilestonesTable    string
	SQSQueueURL        string
	RedisAddr          string
	RedisPassword      string
	CORSAllowedOrigins []string

	GatewayProvider     string
	StripeSecretKey     string
	StripeWebhookSecret string
	GatewayTimeout      time.Duration

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	DefaultCurrency           string
	DepositConfirmationWindow time.Duration
	ConfirmationPollDelay     time.Duration
	ReconcileSettleWindow     time.Duration

	LogLevel slog.Level
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults and validating
// the values each backend requires.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(get(key, def))
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, get(key, def)))
		}
		return d
	}

	cfg := &Config{
		HTTPPort:                  get("HTTP_PORT", "8080"),
		StorageBackend:            strings.ToLower(get("STORAGE_BACKEND", BackendDynamoDB)),
		WalletsTable:              get("DYNAMODB_WALLETS_TABLE_NAME", ""),
		TransactionsTable:         get("DYNAMODB_TRANSACTIONS_TABLE_NAME", ""),
		ContractsTable:            get("DYNAMODB_CONTRACTS_TABLE_NAME", ""),
		MilestonesTable:           get("DYNAMODB_MILESTONES_TABLE_NAME", ""),
		SQSQueueURL:               get("SQS_QUEUE_URL", ""),
		RedisAddr:                 get("REDIS_ADDR", ""),
		RedisPassword:             getenv("REDIS_PASSWORD"),
		CORSAllowedOrigins:        splitList(get("CORS_ALLOWED_ORIGINS", "*")),
		GatewayProvider:           strings.ToLower(get("GATEWAY_PROVIDER", GatewayStripe)),
		StripeSecretKey:           getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:       getenv("STRIPE_WEBHOOK_SECRET"),
		GatewayTimeout:            duration("GATEWAY_TIMEOUT", "10s"),
		JWTSecret:                 getenv("JWT_SECRET"),
		JWTIssuer:                 get("JWT_ISSUER", ""),
		JWTAudience:               get("JWT_AUDIENCE", ""),
		DefaultCurrency:           strings.ToLower(get("DEFAULT_CURRENCY", "inr")),
		DepositConfirmationWindow: duration("DEPOSIT_CONFIRMATION_WINDOW", "30m"),
		ConfirmationPollDelay:     duration("CONFIRMATION_POLL_DELAY", "2m"),
		ReconcileSettleWindow:     duration("RECONCILE_SETTLE_WINDOW", "1m"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	switch cfg.StorageBackend {
	case BackendDynamoDB:
		if cfg.WalletsTable == "" || cfg.TransactionsTable == "" || cfg.ContractsTable == "" || cfg.MilestonesTable == "" {
			errs = append(errs, errors.New("one or more DynamoDB table name environment variables are not set"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND: unknown backend %q", cfg.StorageBackend))
	}

	switch cfg.GatewayProvider {
	case GatewayStripe:
		if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
			errs = append(errs, errors.New("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required for the stripe gateway"))
		}
	case GatewayFake:
	default:
		errs = append(errs, fmt.Errorf("GATEWAY_PROVIDER: unknown provider %q", cfg.GatewayProvider))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable not set"))
	}
	if len(cfg.DefaultCurrency) != 3 {
		errs = append(errs, fmt.Errorf("DEFAULT_CURRENCY: %q is not an ISO 4217 code", cfg.DefaultCurrency))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
