package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestUnitOfWork(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Dedupes Staged Entities", func(t *testing.T) {
		uow := NewUnitOfWork(now)
		w := &models.Wallet{UserId: "u1"}
		uow.PutWallet(w)
		uow.PutWallet(w)
		uow.AddTransaction(models.Transaction{Id: "t1"})
		uow.ChangeStatus("t0", models.TransactionInitiated, models.TransactionSucceeded)

		assert.Len(t, uow.Wallets, 1)
		assert.Equal(t, 3, uow.Len())
	})

	t.Run("Committed Bumps Versions", func(t *testing.T) {
		uow := NewUnitOfWork(now)
		fresh := &models.Wallet{UserId: "u1"}
		existing := &models.Wallet{UserId: "u2", Version: 4}
		uow.PutWallet(fresh)
		uow.PutWallet(existing)
		uow.Committed()

		assert.Equal(t, int64(1), fresh.Version)
		assert.Equal(t, now, fresh.CreatedAt)
		assert.Equal(t, int64(5), existing.Version)
		assert.Equal(t, now, existing.UpdatedAt)
		assert.True(t, existing.CreatedAt.IsZero())
	})
}

func TestRetryOnConflict(t *testing.T) {
	t.Run("Retries Conflicts", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), 3, func() error {
			calls++
			if calls < 3 {
				return ErrConflict
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Gives Up", func(t *testing.T) {
		calls := 0
		err := RetryOnConflict(context.Background(), 2, func() error {
			calls++
			return ErrConflict
		})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, 2, calls)
	})

	t.Run("Other Errors Are Returned Immediately", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := RetryOnConflict(context.Background(), 5, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}

func TestTransactionFilter(t *testing.T) {
	tx := &models.Transaction{UserId: "u1", WalletId: "w1", RelatedContract: "c1"}

	assert.True(t, TransactionFilter{}.Empty())
	assert.True(t, TransactionFilter{UserID: "u1"}.Matches(tx))
	assert.True(t, TransactionFilter{ContractID: "c1", WalletID: "w1"}.Matches(tx))
	assert.False(t, TransactionFilter{MilestoneID: "m1"}.Matches(tx))
}
