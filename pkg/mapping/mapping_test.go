package mapping

import (
	"testing"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{12345, "inr", "123.45"},
		{5, "usd", "0.05"},
		{0, "eur", "0.00"},
		{-250, "inr", "-2.50"},
		{500, "JPY", "500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.currency))
	}
}

func TestToApiWallet(t *testing.T) {
	w := &models.Wallet{
		Id:       "w1",
		UserId:   "user-a",
		Balance:  1000,
		Currency: "inr",
		Holds:    []models.Hold{{Amount: 250, Reason: "contract-escrow", RelatedId: "c1"}},
		Version:  3,
	}
	got := ToApiWallet(w)
	assert.Equal(t, "10.00", got.BalanceDisplay)
	assert.Equal(t, int64(250), got.Held)
	assert.Equal(t, "2.50", got.HeldDisplay)
	assert.Len(t, got.Holds, 1)
	assert.Nil(t, got.FrozenReason)
}

func TestToDomainEscrowInput(t *testing.T) {
	currency := "INR"
	in := &api.NewEscrow{
		FreelancerId: "freelancer",
		TotalAmount:  300,
		Currency:     &currency,
		Milestones:   []api.NewMilestone{{Title: "a", Amount: 100}, {Title: "b", Amount: 200}},
	}
	got := ToDomainEscrowInput("c1", "caller", in)
	assert.Equal(t, "c1", got.ContractID)
	assert.Equal(t, "caller", got.ClientID)
	assert.Equal(t, "inr", got.Currency)
	assert.Len(t, got.Milestones, 2)

	other := "client"
	in.ClientId = &other
	assert.Equal(t, "client", ToDomainEscrowInput("c1", "caller", in).ClientID)
}

func TestToDomainManualTransaction(t *testing.T) {
	str := func(s string) *string { return &s }

	got := ToDomainManualTransaction(api.ManualTransaction{
		UserId:   "alice",
		Amount:   700,
		Type:     "Credit",
		Reason:   "bank transfer",
		Provider: str("BANK"),
		Status:   str("failed"),
	})
	assert.Equal(t, "alice", got.UserId)
	assert.Equal(t, models.TransactionCredit, got.Type)
	assert.Equal(t, models.ProviderBank, got.Provider)
	assert.Equal(t, models.TransactionFailed, got.Status)
	assert.Empty(t, got.WalletId)
	assert.Empty(t, got.Currency)
}
