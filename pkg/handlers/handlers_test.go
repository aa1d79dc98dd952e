package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/escrow"
	"github.com/chris/escrow-wallet/pkg/gateway"
	"github.com/chris/escrow-wallet/pkg/handlers"
	"github.com/chris/escrow-wallet/pkg/handlers/contracts"
	ledgerhandler "github.com/chris/escrow-wallet/pkg/handlers/ledger"
	"github.com/chris/escrow-wallet/pkg/handlers/transactions"
	"github.com/chris/escrow-wallet/pkg/handlers/wallets"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/payments"
	"github.com/chris/escrow-wallet/pkg/storage/memory"
	"github.com/chris/escrow-wallet/pkg/wallet"
	"github.com/chris/escrow-wallet/pkg/websockets"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, p auth.Principal) (http.Handler, *wallet.Service) {
	t.Helper()
	store := memory.New()
	ws := wallet.NewService(store, "inr")
	ldg := ledger.NewService(store, ws)
	pay := payments.NewService(store, ws, ldg, gateway.NewFake(), nil, nil)
	notifier := websockets.NewNotifier(nil, store)

	h := handlers.NewApiHandler(
		wallets.NewWalletsHandler(ws, ldg),
		transactions.NewTransactionsHandler(pay, ldg, notifier),
		ledgerhandler.NewLedgerHandler(ldg, "inr", notifier),
		contracts.NewContractsHandler(escrow.NewCoordinator(store, ws), "inr", notifier),
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	})
	return api.HandlerWithOptions(h, api.ChiServerOptions{
		BaseRouter:  r,
		Middlewares: []api.MiddlewareFunc{auth.RoleScopes(api.BearerAuthScopes)},
	}), ws
}

func TestRouting(t *testing.T) {
	router, ws := newRouter(t, auth.Principal{UserID: "alice", Role: auth.RoleClient})
	_, err := ws.Credit(context.Background(), "alice", 1000, models.TxMeta{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"Own Wallet", http.MethodGet, "/wallets/alice", http.StatusOK},
		{"Foreign Wallet", http.MethodGet, "/wallets/bob", http.StatusForbidden},
		{"Own Transactions", http.MethodGet, "/transactions?user_id=alice", http.StatusOK},
		{"Stats Is Not A Transaction Id", http.MethodGet, "/transactions/stats", http.StatusForbidden},
		{"Malformed Transaction Id", http.MethodGet, "/transactions/not-a-uuid", http.StatusBadRequest},
		{"Unknown Transaction", http.MethodGet, "/transactions/3f1c3a52-8f0e-4a4b-9d7e-2f1b7c6a9e10", http.StatusNotFound},
		{"Unknown Contract", http.MethodGet, "/contracts/c9", http.StatusNotFound},
		{"Unknown Milestone", http.MethodPost, "/milestones/m9/approve", http.StatusNotFound},
		{"Own Contracts", http.MethodGet, "/contracts", http.StatusOK},
		{"Reconciliation Needs Admin", http.MethodGet, "/wallets/alice/reconciliation", http.StatusForbidden},
		{"Contract Stats Need Admin", http.MethodGet, "/contracts/stats", http.StatusForbidden},
		{"Milestone Listing Needs Admin", http.MethodGet, "/milestones", http.StatusForbidden},
		{"Dispute Reset Needs Admin", http.MethodPost, "/milestones/m9/reset", http.StatusForbidden},
		{"Manual Transaction Needs Admin", http.MethodPost, "/transactions", http.StatusForbidden},
		{"Status Update Needs Admin", http.MethodPatch, "/transactions/3f1c3a52-8f0e-4a4b-9d7e-2f1b7c6a9e10/status", http.StatusForbidden},
		{"Refund Needs Admin", http.MethodPost, "/transactions/3f1c3a52-8f0e-4a4b-9d7e-2f1b7c6a9e10/refund", http.StatusForbidden},
		{"Unknown Route", http.MethodGet, "/ledger", http.StatusNotFound},
		{"Wrong Method", http.MethodDelete, "/wallets/alice", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestAdminRouting(t *testing.T) {
	router, ws := newRouter(t, auth.Principal{UserID: "ops", Role: auth.RoleAdmin})
	_, err := ws.Credit(context.Background(), "alice", 1000, models.TxMeta{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"Transaction Stats", http.MethodGet, "/transactions/stats", http.StatusOK},
		{"Contract Stats", http.MethodGet, "/contracts/stats", http.StatusOK},
		{"Milestones", http.MethodGet, "/milestones?status=approved", http.StatusOK},
		{"All Contracts", http.MethodGet, "/contracts", http.StatusOK},
		{"Reconciliation", http.MethodGet, "/wallets/alice/reconciliation", http.StatusOK},
		{"Unknown Milestone Reset", http.MethodPost, "/milestones/m9/reset", http.StatusNotFound},
		{"Status Update Without Body", http.MethodPatch, "/transactions/3f1c3a52-8f0e-4a4b-9d7e-2f1b7c6a9e10/status", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}
