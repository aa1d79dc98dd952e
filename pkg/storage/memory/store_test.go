package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWallet(t *testing.T, s *Store, userID string, balance int64) *models.Wallet {
	t.Helper()
	w := &models.Wallet{Id: "w-" + userID, UserId: userID, Balance: balance, Currency: "inr"}
	uow := storage.NewUnitOfWork(time.Now())
	uow.PutWallet(w)
	require.NoError(t, s.Commit(context.Background(), uow))
	return w
}

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates And Versions Wallets", func(t *testing.T) {
		s := New()
		w := seedWallet(t, s, "user1", 100)
		assert.Equal(t, int64(1), w.Version)

		stored, err := s.GetWallet(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(100), stored.Balance)
		assert.Equal(t, int64(1), stored.Version)
	})

	t.Run("Rejects Stale Version", func(t *testing.T) {
		s := New()
		seedWallet(t, s, "user1", 100)

		first, _ := s.GetWallet(ctx, "user1")
		second, _ := s.GetWallet(ctx, "user1")

		first.Balance -= 60
		uow := storage.NewUnitOfWork(time.Now())
		uow.PutWallet(first)
		require.NoError(t, s.Commit(ctx, uow))

		second.Balance -= 60
		uow = storage.NewUnitOfWork(time.Now())
		uow.PutWallet(second)
		assert.ErrorIs(t, s.Commit(ctx, uow), storage.ErrConflict)

		stored, _ := s.GetWallet(ctx, "user1")
		assert.Equal(t, int64(40), stored.Balance)
	})

	t.Run("Rejects Duplicate Create", func(t *testing.T) {
		s := New()
		seedWallet(t, s, "user1", 0)

		uow := storage.NewUnitOfWork(time.Now())
		uow.PutWallet(&models.Wallet{Id: "other", UserId: "user1"})
		assert.ErrorIs(t, s.Commit(ctx, uow), storage.ErrConflict)
	})

	t.Run("Rejects Negative Balance", func(t *testing.T) {
		s := New()
		uow := storage.NewUnitOfWork(time.Now())
		uow.PutWallet(&models.Wallet{Id: "w1", UserId: "user1", Balance: -1})
		assert.ErrorIs(t, s.Commit(ctx, uow), models.ErrInvariantViolation)
	})

	t.Run("Status Change Requires Expected Status", func(t *testing.T) {
		s := New()
		uow := storage.NewUnitOfWork(time.Now())
		uow.AddTransaction(models.Transaction{Id: "t1", Status: models.TransactionInitiated})
		require.NoError(t, s.Commit(ctx, uow))

		uow = storage.NewUnitOfWork(time.Now())
		uow.ChangeStatus("t1", models.TransactionInitiated, models.TransactionSucceeded)
		require.NoError(t, s.Commit(ctx, uow))

		uow = storage.NewUnitOfWork(time.Now())
		uow.ChangeStatus("t1", models.TransactionInitiated, models.TransactionFailed)
		assert.ErrorIs(t, s.Commit(ctx, uow), storage.ErrConflict)

		tx, _ := s.GetTransaction(ctx, "t1")
		assert.Equal(t, models.TransactionSucceeded, tx.Status)
	})

	t.Run("Fault Rolls Back Everything", func(t *testing.T) {
		s := New()
		client := seedWallet(t, s, "client", 500)

		boom := errors.New("disk on fire")
		s.InjectFault(func(step int) error {
			if step == 3 {
				return boom
			}
			return nil
		})

		client.Balance -= 200
		uow := storage.NewUnitOfWork(time.Now())
		uow.PutWallet(client)
		uow.PutWallet(&models.Wallet{Id: "w-free", UserId: "freelancer", Balance: 200})
		uow.AddTransaction(models.Transaction{Id: "t1", WalletId: client.Id, UserId: "client"})
		err := s.Commit(ctx, uow)
		assert.ErrorIs(t, err, boom)

		stored, _ := s.GetWallet(ctx, "client")
		assert.Equal(t, int64(500), stored.Balance)
		assert.Equal(t, int64(1), stored.Version)
		_, err = s.GetWallet(ctx, "freelancer")
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = s.GetTransaction(ctx, "t1")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Equal(t, int64(1), client.Version)
	})

	t.Run("Too Many Items", func(t *testing.T) {
		s := New()
		uow := storage.NewUnitOfWork(time.Now())
		for i := 0; i <= storage.MaxUnitOfWorkItems; i++ {
			uow.ChangeStatus("t", models.TransactionInitiated, models.TransactionFailed)
		}
		assert.ErrorIs(t, s.Commit(ctx, uow), storage.ErrTooManyItems)
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now().Add(-time.Hour)

	uow := storage.NewUnitOfWork(time.Now())
	uow.AddTransaction(models.Transaction{Id: "old", UserId: "u1", WalletId: "w1", Status: models.TransactionInitiated, CreatedAt: base})
	uow.AddTransaction(models.Transaction{Id: "new", UserId: "u1", WalletId: "w1", Status: models.TransactionSucceeded, CreatedAt: base.Add(time.Minute), RelatedContract: "c1"})
	uow.AddTransaction(models.Transaction{Id: "other", UserId: "u2", WalletId: "w2", Status: models.TransactionInitiated, CreatedAt: base.Add(2 * time.Minute), ProviderPaymentId: "pi_1"})
	require.NoError(t, s.Commit(ctx, uow))

	t.Run("Newest First", func(t *testing.T) {
		txs, err := s.ListTransactions(ctx, storage.TransactionFilter{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "new", txs[0].Id)
		assert.Equal(t, "old", txs[1].Id)
	})

	t.Run("By Contract", func(t *testing.T) {
		txs, err := s.ListTransactions(ctx, storage.TransactionFilter{ContractID: "c1"})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "new", txs[0].Id)
	})

	t.Run("Empty Filter", func(t *testing.T) {
		_, err := s.ListTransactions(ctx, storage.TransactionFilter{})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Stale", func(t *testing.T) {
		txs, err := s.GetStaleTransactions(ctx, models.TransactionInitiated, 30*time.Minute)
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("By Provider Payment", func(t *testing.T) {
		tx, err := s.GetTransactionByProviderPaymentID(ctx, "pi_1")
		require.NoError(t, err)
		assert.Equal(t, "other", tx.Id)

		_, err = s.GetTransactionByProviderPaymentID(ctx, "pi_missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestMilestonesKeepCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	uow := storage.NewUnitOfWork(time.Now())
	uow.PutContract(&models.Contract{Id: "c1"})
	for _, id := range []string{"m-b", "m-a", "m-c"} {
		uow.PutMilestone(&models.Milestone{Id: id, ContractId: "c1"})
	}
	uow.PutMilestone(&models.Milestone{Id: "m-x", ContractId: "c2"})
	require.NoError(t, s.Commit(ctx, uow))

	ms, err := s.ListMilestones(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, "m-b", ms[0].Id)
	assert.Equal(t, "m-a", ms[1].Id)
	assert.Equal(t, "m-c", ms[2].Id)
}

func TestListContracts(t *testing.T) {
	ctx := context.Background()
	s := New()

	uow := storage.NewUnitOfWork(time.Now())
	uow.PutContract(&models.Contract{Id: "c1", ClientId: "alice", FreelancerId: "bob"})
	uow.PutContract(&models.Contract{Id: "c2", ClientId: "carol", FreelancerId: "alice"})
	uow.PutContract(&models.Contract{Id: "c3", ClientId: "carol", FreelancerId: "bob"})
	require.NoError(t, s.Commit(ctx, uow))

	mine, err := s.ListContracts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c2", mine[0].Id)
	assert.Equal(t, "c1", mine[1].Id)

	all, err := s.ListContracts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
