package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewService(store, "inr"), store
}

func fund(t *testing.T, s *Service, userID string, amount int64) {
	t.Helper()
	_, err := s.Credit(context.Background(), userID, amount, models.TxMeta{Reason: "seed"})
	require.NoError(t, err)
}

func TestCreateWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s, _ := newTestService(t)
		w, err := s.CreateWallet(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, "inr", w.Currency)
		assert.Equal(t, int64(0), w.Balance)
		assert.NotEmpty(t, w.Id)
	})

	t.Run("Already Exists", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.CreateWallet(ctx, "user-a")
		require.NoError(t, err)

		_, err = s.CreateWallet(ctx, "user-a")
		assert.ErrorIs(t, err, models.ErrAlreadyExists)
	})

	t.Run("Requires User", func(t *testing.T) {
		s, _ := newTestService(t)
		_, err := s.CreateWallet(ctx, "")
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestGetBalanceCreatesLazily(t *testing.T) {
	s, store := newTestService(t)
	w, err := s.GetBalance(context.Background(), "newcomer")
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Balance)

	stored, err := store.GetWallet(context.Background(), "newcomer")
	require.NoError(t, err)
	assert.Equal(t, w.Id, stored.Id)
}

func TestDebit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s, store := newTestService(t)
		fund(t, s, "user-a", 1000)

		tx, err := s.Debit(ctx, "user-a", 400, models.TxMeta{Reason: "withdrawal", Provider: models.ProviderBank})
		require.NoError(t, err)
		assert.Equal(t, models.TransactionDebit, tx.Type)
		assert.Equal(t, models.ProviderBank, tx.Provider)
		assert.Equal(t, models.TransactionSucceeded, tx.Status)

		w, _ := store.GetWallet(ctx, "user-a")
		assert.Equal(t, int64(600), w.Balance)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		s, store := newTestService(t)
		fund(t, s, "user-a", 100)

		_, err := s.Debit(ctx, "user-a", 101, models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		w, _ := store.GetWallet(ctx, "user-a")
		assert.Equal(t, int64(100), w.Balance)
		txs, _ := store.ListTransactions(ctx, storage.TransactionFilter{UserID: "user-a"})
		assert.Len(t, txs, 1)
	})

	t.Run("Rejects Non-Positive Amount", func(t *testing.T) {
		s, _ := newTestService(t)
		fund(t, s, "user-a", 100)
		_, err := s.Debit(ctx, "user-a", 0, models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Frozen Wallet", func(t *testing.T) {
		s, _ := newTestService(t)
		fund(t, s, "user-a", 100)
		require.NoError(t, s.Freeze(ctx, "user-a", "manual review"))

		_, err := s.Debit(ctx, "user-a", 10, models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrWalletFrozen)
		_, err = s.Credit(ctx, "user-a", 10, models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrWalletFrozen)
	})
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	s, store := newTestService(t)
	s.Attempts = 50
	fund(t, s, "user-a", 500)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Debit(ctx, "user-a", 100, models.TxMeta{Reason: "race"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, models.ErrInsufficientFunds) && !errors.Is(err, storage.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	w, err := store.GetWallet(ctx, "user-a")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, w.Balance, int64(0))
	assert.LessOrEqual(t, succeeded, 5)
	assert.Equal(t, int64(500-100*succeeded), w.Balance)
}

func TestHolds(t *testing.T) {
	ctx := context.Background()

	t.Run("Place And Return To Same Wallet", func(t *testing.T) {
		s, store := newTestService(t)
		fund(t, s, "client", 1000)

		hold, err := s.PlaceHold(ctx, "client", 600, "contract-escrow", "c1", models.TxMeta{RelatedContract: "c1"})
		require.NoError(t, err)
		assert.Equal(t, "c1", hold.HoldRef)

		w, _ := store.GetWallet(ctx, "client")
		assert.Equal(t, int64(400), w.Balance)
		assert.Equal(t, int64(600), w.HeldTotal())

		txs, err := s.ReleaseHold(ctx, "client", "c1", SameWallet(), models.TxMeta{Reason: "cancelled"})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionRefund, txs[0].Type)

		w, _ = store.GetWallet(ctx, "client")
		assert.Equal(t, int64(1000), w.Balance)
		assert.Empty(t, w.Holds)
	})

	t.Run("Pay Out To Other Wallet", func(t *testing.T) {
		s, store := newTestService(t)
		fund(t, s, "client", 1000)
		_, err := s.PlaceHold(ctx, "client", 600, "contract-escrow", "c1", models.TxMeta{})
		require.NoError(t, err)

		txs, err := s.ReleaseHold(ctx, "client", "c1", OtherWallet("freelancer"), models.TxMeta{Reason: "milestone"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, models.TransactionPayout, txs[0].Type)
		assert.Equal(t, models.TransactionCredit, txs[1].Type)

		client, _ := store.GetWallet(ctx, "client")
		freelancer, _ := store.GetWallet(ctx, "freelancer")
		assert.Equal(t, int64(400), client.Balance)
		assert.Empty(t, client.Holds)
		assert.Equal(t, int64(600), freelancer.Balance)
	})

	t.Run("Duplicate Hold", func(t *testing.T) {
		s, _ := newTestService(t)
		fund(t, s, "client", 1000)
		_, err := s.PlaceHold(ctx, "client", 100, "contract-escrow", "c1", models.TxMeta{})
		require.NoError(t, err)

		_, err = s.PlaceHold(ctx, "client", 100, "contract-escrow", "c1", models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrAlreadyHeld)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		s, store := newTestService(t)
		fund(t, s, "client", 100)

		_, err := s.PlaceHold(ctx, "client", 600, "contract-escrow", "c1", models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)

		w, _ := store.GetWallet(ctx, "client")
		assert.Equal(t, int64(100), w.Balance)
		assert.Empty(t, w.Holds)
	})

	t.Run("Release Unknown Hold", func(t *testing.T) {
		s, _ := newTestService(t)
		fund(t, s, "client", 100)

		_, err := s.ReleaseHold(ctx, "client", "nope", SameWallet(), models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Release To Self Via OtherWallet Is Rejected", func(t *testing.T) {
		s, _ := newTestService(t)
		fund(t, s, "client", 100)
		_, err := s.PlaceHold(ctx, "client", 50, "contract-escrow", "c1", models.TxMeta{})
		require.NoError(t, err)

		_, err = s.ReleaseHold(ctx, "client", "c1", OtherWallet("client"), models.TxMeta{})
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

// corruptStore reports a negative balance for one user to simulate a wallet
// written outside the service.
type corruptStore struct {
	*memory.Store
	userID string
}

func (c *corruptStore) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	w, err := c.Store.GetWallet(ctx, userID)
	if err == nil && userID == c.userID {
		w.Balance = -5
	}
	return w, err
}

func TestNegativeBalanceFreezesWallet(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	seed := NewService(mem, "inr")
	fund(t, seed, "bad", 10)

	s := NewService(&corruptStore{Store: mem, userID: "bad"}, "inr")

	_, err := s.GetBalance(ctx, "bad")
	assert.ErrorIs(t, err, models.ErrInvariantViolation)

	stored, err := mem.GetWallet(ctx, "bad")
	require.NoError(t, err)
	assert.True(t, stored.Frozen)
	assert.Equal(t, "negative balance", stored.FrozenReason)

	_, err = s.Debit(ctx, "bad", 1, models.TxMeta{})
	assert.ErrorIs(t, err, models.ErrInvariantViolation)
}
