package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionStatusTransitions(t *testing.T) {
	allowed := map[TransactionStatus][]TransactionStatus{
		TransactionInitiated: {TransactionSucceeded, TransactionFailed},
		TransactionSucceeded: {TransactionRefunded},
	}

	for _, from := range TransactionStatuses {
		for _, to := range TransactionStatuses {
			assert.Equal(t, contains(allowed[from], to), from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestMilestoneStatusTransitions(t *testing.T) {
	assert.True(t, MilestonePending.CanTransitionTo(MilestoneSubmitted))
	assert.True(t, MilestoneSubmitted.CanTransitionTo(MilestoneApproved))
	assert.True(t, MilestoneApproved.CanTransitionTo(MilestoneReleased))
	assert.True(t, MilestoneSubmitted.CanTransitionTo(MilestoneDisputed))

	assert.False(t, MilestonePending.CanTransitionTo(MilestoneApproved))
	assert.False(t, MilestonePending.CanTransitionTo(MilestoneDisputed))
	assert.False(t, MilestoneReleased.CanTransitionTo(MilestoneDisputed))
	assert.False(t, MilestoneDisputed.CanTransitionTo(MilestoneReleased))
	assert.False(t, MilestoneDisputed.CanTransitionTo(MilestoneSubmitted))
	assert.True(t, MilestoneDisputed.CanReset())
	assert.False(t, MilestoneSubmitted.CanReset())
	assert.False(t, MilestoneStatus("bogus").Valid())
}

func TestContractStatusTransitions(t *testing.T) {
	assert.True(t, ContractActive.CanTransitionTo(ContractDisputed))
	assert.True(t, ContractDisputed.CanTransitionTo(ContractTerminated))
	assert.False(t, ContractCompleted.CanTransitionTo(ContractActive))
	assert.False(t, ContractTerminated.CanTransitionTo(ContractActive))
	assert.True(t, EscrowFundsHeld.CanTransitionTo(EscrowRefunded))
	assert.False(t, EscrowReleased.CanTransitionTo(EscrowRefunded))
}

func TestWalletHolds(t *testing.T) {
	now := time.Now()

	t.Run("Place", func(t *testing.T) {
		w := &Wallet{Balance: 1000}
		require.NoError(t, w.PlaceHold(600, "contract-escrow", "c1", now))
		assert.Equal(t, int64(400), w.Balance)
		assert.Equal(t, int64(600), w.HeldTotal())

		assert.ErrorIs(t, w.PlaceHold(100, "contract-escrow", "c1", now), ErrAlreadyHeld)
		assert.ErrorIs(t, w.PlaceHold(500, "contract-escrow", "c2", now), ErrInsufficientFunds)
		assert.ErrorIs(t, w.PlaceHold(0, "contract-escrow", "c3", now), ErrValidation)
		assert.Equal(t, int64(400), w.Balance)
	})

	t.Run("Reduce", func(t *testing.T) {
		w := &Wallet{Holds: []Hold{{Amount: 600, RelatedId: "c1"}}}
		taken, err := w.ReduceHold("c1", 200)
		require.NoError(t, err)
		assert.Equal(t, int64(200), taken.Amount)
		assert.Equal(t, int64(400), w.HeldTotal())

		_, err = w.ReduceHold("c1", 500)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		_, err = w.ReduceHold("c1", 400)
		require.NoError(t, err)
		assert.Empty(t, w.Holds)

		_, err = w.ReduceHold("c1", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Split", func(t *testing.T) {
		w := &Wallet{Holds: []Hold{{Amount: 600, RelatedId: "c1"}}}
		require.NoError(t, w.SplitHold("c1", "m1", 200, "milestone-dispute", now))
		assert.Equal(t, int64(600), w.HeldTotal())
		h, ok := w.FindHold("m1")
		require.True(t, ok)
		assert.Equal(t, int64(200), h.Amount)

		assert.ErrorIs(t, w.SplitHold("c1", "m1", 100, "milestone-dispute", now), ErrAlreadyHeld)
	})

	t.Run("Clone Does Not Alias Holds", func(t *testing.T) {
		w := &Wallet{Holds: []Hold{{Amount: 600, RelatedId: "c1"}}}
		c := w.Clone()
		c.Holds[0].Amount = 1
		assert.Equal(t, int64(600), w.Holds[0].Amount)
	})
}

func TestTransactionEffect(t *testing.T) {
	cases := []struct {
		name      string
		tx        Transaction
		available int64
		held      int64
	}{
		{"Credit", Transaction{Type: TransactionCredit, Amount: 10, Status: TransactionSucceeded}, 10, 0},
		{"Pending Credit", Transaction{Type: TransactionCredit, Amount: 10, Status: TransactionInitiated}, 0, 0},
		{"Failed Credit", Transaction{Type: TransactionCredit, Amount: 10, Status: TransactionFailed}, 0, 0},
		{"Refunded Credit", Transaction{Type: TransactionCredit, Amount: 10, Status: TransactionRefunded}, 10, 0},
		{"Debit", Transaction{Type: TransactionDebit, Amount: 10, Status: TransactionSucceeded}, -10, 0},
		{"Hold Debit", Transaction{Type: TransactionDebit, Amount: 10, HoldRef: "c1", Status: TransactionSucceeded}, -10, 10},
		{"Hold Refund", Transaction{Type: TransactionRefund, Amount: 10, HoldRef: "c1", Status: TransactionSucceeded}, 10, -10},
		{"Hold Payout", Transaction{Type: TransactionPayout, Amount: 10, HoldRef: "c1", Status: TransactionSucceeded}, 0, -10},
		{"Fee", Transaction{Type: TransactionFee, Amount: 10, Status: TransactionSucceeded}, -10, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			available, held := tc.tx.Effect()
			assert.Equal(t, tc.available, available)
			assert.Equal(t, tc.held, held)
		})
	}
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
