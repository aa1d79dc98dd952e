package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/handlers"
	"github.com/chris/escrow-wallet/pkg/handlers/contracts"
	ledgerhandler "github.com/chris/escrow-wallet/pkg/handlers/ledger"
	"github.com/chris/escrow-wallet/pkg/handlers/transactions"
	"github.com/chris/escrow-wallet/pkg/handlers/wallets"
	"github.com/chris/escrow-wallet/pkg/handlers/webhooks"
	wshandler "github.com/chris/escrow-wallet/pkg/handlers/websockets"
	mw "github.com/chris/escrow-wallet/pkg/middleware"
	"github.com/chris/escrow-wallet/pkg/websockets"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router builds the HTTP API. The gateway webhook and the health check are
// public; everything else requires a bearer token, and operations scoped to
// roles in api/openapi.yaml only admit those roles.
func (a *App) Router(logger *slog.Logger) http.Handler {
	notifier := websockets.NewNotifier(a.Hub, a.Store)
	handler := handlers.NewApiHandler(
		wallets.NewWalletsHandler(a.Wallets, a.Ledger),
		transactions.NewTransactionsHandler(a.Payments, a.Ledger, notifier),
		ledgerhandler.NewLedgerHandler(a.Ledger, a.Config.DefaultCurrency, notifier),
		contracts.NewContractsHandler(a.Escrow, a.Config.DefaultCurrency, notifier),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.NewStructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", a.healthz)
	if a.Webhooks != nil {
		r.Method(http.MethodPost, "/webhooks/gateway", webhooks.NewHandler(a.Webhooks, a.Payments))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(a.Verifier))
		r.Method(http.MethodGet, "/ws", wshandler.NewHandler(a.Hub, a.Config.CORSAllowedOrigins))
		api.HandlerWithOptions(handler, api.ChiServerOptions{
			BaseRouter:  r,
			Middlewares: []api.MiddlewareFunc{auth.RoleScopes(api.BearerAuthScopes)},
		})
	})
	return r
}
