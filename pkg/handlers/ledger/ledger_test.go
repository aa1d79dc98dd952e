package ledger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/auth"
	ledgerhandler "github.com/chris/escrow-wallet/pkg/handlers/ledger"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage/memory"
	"github.com/chris/escrow-wallet/pkg/wallet"
	"github.com/chris/escrow-wallet/pkg/websockets"
	"github.com/chris/escrow-wallet/pkg/websockets/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var admin = auth.Principal{UserID: "ops", Role: auth.RoleAdmin}

type fixture struct {
	store   *memory.Store
	wallets *wallet.Service
	ledger  *ledger.Service
	handler *ledgerhandler.LedgerHandler
}

func newFixture(publisher websockets.Publisher) *fixture {
	store := memory.New()
	ws := wallet.NewService(store, "inr")
	l := ledger.NewService(store, ws)
	return &fixture{
		store:   store,
		wallets: ws,
		ledger:  l,
		handler: ledgerhandler.NewLedgerHandler(l, "inr", websockets.NewNotifier(publisher, store)),
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(auth.WithPrincipal(req.Context(), admin))
}

func statsRequest(p auth.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/transactions/stats", nil)
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

func byKey(groups []api.TransactionGroup) map[string]api.TransactionGroup {
	out := make(map[string]api.TransactionGroup, len(groups))
	for _, g := range groups {
		out[g.Key] = g
	}
	return out
}

func TestGetTransactionStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	ws, l, h := f.wallets, f.ledger, f.handler

	_, err := ws.Credit(ctx, "alice", 150000, models.TxMeta{})
	require.NoError(t, err)
	_, err = ws.Credit(ctx, "bob", 2500, models.TxMeta{})
	require.NoError(t, err)
	_, err = ws.Debit(ctx, "alice", 50000, models.TxMeta{})
	require.NoError(t, err)
	aliceWallet, err := ws.GetBalance(ctx, "alice")
	require.NoError(t, err)
	_, err = l.Record(ctx, &models.Transaction{
		UserId: "alice", WalletId: aliceWallet.Id, Amount: 700, Type: models.TransactionCredit,
		Provider: models.ProviderGateway, ProviderPaymentId: "pi_1", Status: models.TransactionInitiated,
	})
	require.NoError(t, err)

	str := func(s string) *string { return &s }

	t.Run("By Status", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetTransactionStats(rr, statsRequest(admin), api.GetTransactionStatsParams{})

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []api.TransactionGroup
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		groups := byKey(got)
		assert.Equal(t, 3, groups["succeeded"].Count)
		assert.Equal(t, int64(202500), groups["succeeded"].Total)
		assert.Equal(t, "2025.00", groups["succeeded"].TotalDisplay)
		assert.Equal(t, 1, groups["initiated"].Count)
		assert.Equal(t, 0, groups["refunded"].Count)
	})

	t.Run("By Type For One User", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetTransactionStats(rr, statsRequest(admin), api.GetTransactionStatsParams{GroupBy: str("type"), UserId: str("alice")})

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []api.TransactionGroup
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		groups := byKey(got)
		assert.Equal(t, 2, groups["credit"].Count)
		assert.Equal(t, 1, groups["debit"].Count)
		assert.Equal(t, int64(50000), groups["debit"].Total)
	})

	t.Run("Unknown Grouping", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.GetTransactionStats(rr, statsRequest(admin), api.GetTransactionStatsParams{GroupBy: str("weekday")})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateManualTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Records Without Moving Money", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.wallets.Credit(ctx, "alice", 1000, models.TxMeta{})
		require.NoError(t, err)
		rr := httptest.NewRecorder()

		f.handler.CreateManualTransaction(rr, jsonRequest(http.MethodPost, "/transactions", api.ManualTransaction{
			UserId: "alice", Amount: 700, Type: "credit", Reason: "bank transfer",
		}))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got api.Transaction
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.NotEmpty(t, got.Id)
		assert.NotEmpty(t, got.WalletId)
		assert.Equal(t, string(models.TransactionInitiated), got.Status)
		assert.Equal(t, "inr", got.Currency)
		assert.Equal(t, "7.00", got.AmountDisplay)

		w, err := f.wallets.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), w.Balance)
	})

	t.Run("Succeeded Is Rejected", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.wallets.Credit(ctx, "alice", 1000, models.TxMeta{})
		require.NoError(t, err)
		status := "succeeded"
		rr := httptest.NewRecorder()

		f.handler.CreateManualTransaction(rr, jsonRequest(http.MethodPost, "/transactions", api.ManualTransaction{
			UserId: "alice", Amount: 700, Type: "credit", Reason: "bank transfer", Status: &status,
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		f := newFixture(nil)
		rr := httptest.NewRecorder()

		f.handler.CreateManualTransaction(rr, jsonRequest(http.MethodPost, "/transactions", api.ManualTransaction{
			UserId: "alice", Amount: 700, Type: "gift", Reason: "bank transfer",
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateTransactionStatus(t *testing.T) {
	ctx := context.Background()

	record := func(t *testing.T, f *fixture, typ models.TransactionType, amount int64) string {
		t.Helper()
		_, err := f.wallets.Credit(ctx, "alice", 1000, models.TxMeta{})
		require.NoError(t, err)
		id, err := f.ledger.Record(ctx, &models.Transaction{UserId: "alice", Amount: amount, Type: typ, Reason: "manual"})
		require.NoError(t, err)
		return id
	}
	update := func(f *fixture, id, status string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		f.handler.UpdateTransactionStatus(rr,
			jsonRequest(http.MethodPatch, "/transactions/"+id+"/status", api.TransactionStatusUpdate{Status: status}),
			uuid.MustParse(id))
		return rr
	}
	balanceUpdate := func(balance, change int64) interface{} {
		return mock.MatchedBy(func(m websockets.Message) bool {
			payload, ok := m.Payload.(websockets.WalletUpdatePayload)
			return ok && payload.NewBalance == balance && payload.Change == change
		})
	}

	t.Run("Succeeded Credits And Notifies", func(t *testing.T) {
		publisher := mocks.NewPublisher(t)
		f := newFixture(publisher)
		id := record(t, f, models.TransactionCredit, 700)
		publisher.On("Publish", mock.Anything, "alice", balanceUpdate(1700, 700)).Return(nil).Once()

		rr := update(f, id, "succeeded")

		assert.Equal(t, http.StatusOK, rr.Code)
		var got api.Transaction
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, string(models.TransactionSucceeded), got.Status)
	})

	t.Run("Succeeded Debit Reports Negative Change", func(t *testing.T) {
		publisher := mocks.NewPublisher(t)
		f := newFixture(publisher)
		id := record(t, f, models.TransactionDebit, 400)
		publisher.On("Publish", mock.Anything, "alice", balanceUpdate(600, -400)).Return(nil).Once()

		rr := update(f, id, "succeeded")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failed Does Not Notify", func(t *testing.T) {
		publisher := mocks.NewPublisher(t)
		f := newFixture(publisher)
		id := record(t, f, models.TransactionCredit, 700)

		rr := update(f, id, "failed")

		assert.Equal(t, http.StatusOK, rr.Code)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		w, err := f.wallets.GetBalance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), w.Balance)
	})

	t.Run("Invalid Transition", func(t *testing.T) {
		f := newFixture(nil)
		id := record(t, f, models.TransactionCredit, 700)
		require.Equal(t, http.StatusOK, update(f, id, "failed").Code)

		rr := update(f, id, "succeeded")

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		f := newFixture(nil)

		rr := update(f, uuid.NewString(), "failed")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
