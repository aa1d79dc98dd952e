package mapping

import (
	"strings"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/escrow"
	"github.com/chris/escrow-wallet/pkg/ledger"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// FormatAmount renders an amount in minor units as a major-unit string, e.g.
// 12345 inr is "123.45".
func FormatAmount(amount int64, currency string) string {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return decimal.NewFromInt(amount).String()
	}
	return decimal.New(amount, -2).StringFixed(2)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToApiWallet converts a domain Wallet model to an API Wallet model.
func ToApiWallet(w *models.Wallet) *api.Wallet {
	holds := make([]api.Hold, len(w.Holds))
	for i, h := range w.Holds {
		holds[i] = api.Hold{Amount: h.Amount, Reason: h.Reason, RelatedId: h.RelatedId, CreatedAt: h.CreatedAt}
	}
	held := w.HeldTotal()
	return &api.Wallet{
		Id:             w.Id,
		UserId:         w.UserId,
		Balance:        w.Balance,
		BalanceDisplay: FormatAmount(w.Balance, w.Currency),
		Held:           held,
		HeldDisplay:    FormatAmount(held, w.Currency),
		Currency:       w.Currency,
		Holds:          holds,
		Frozen:         w.Frozen,
		FrozenReason:   optional(w.FrozenReason),
		Version:        w.Version,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// ToApiTransaction converts a domain Transaction model to an API Transaction model.
func ToApiTransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		Id:                tx.Id,
		WalletId:          tx.WalletId,
		UserId:            tx.UserId,
		Amount:            tx.Amount,
		AmountDisplay:     FormatAmount(tx.Amount, tx.Currency),
		Currency:          tx.Currency,
		Type:              string(tx.Type),
		Reason:            tx.Reason,
		Provider:          string(tx.Provider),
		ProviderPaymentId: optional(tx.ProviderPaymentId),
		RelatedContract:   optional(tx.RelatedContract),
		RelatedMilestone:  optional(tx.RelatedMilestone),
		HoldRef:           optional(tx.HoldRef),
		Status:            string(tx.Status),
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

func ToApiTransactions(txs []models.Transaction) []*api.Transaction {
	out := make([]*api.Transaction, len(txs))
	for i := range txs {
		out[i] = ToApiTransaction(&txs[i])
	}
	return out
}

// ToApiGroups converts aggregate rows; totals are displayed in currency.
func ToApiGroups(groups []ledger.Group, currency string) []api.TransactionGroup {
	out := make([]api.TransactionGroup, len(groups))
	for i, g := range groups {
		out[i] = api.TransactionGroup{Key: g.Key, Count: g.Count, Total: g.Total, TotalDisplay: FormatAmount(g.Total, currency)}
	}
	return out
}

// ToApiStatusGroups converts contract stats rows; totals are displayed in currency.
func ToApiStatusGroups(groups []escrow.StatusGroup, currency string) []api.StatusGroup {
	out := make([]api.StatusGroup, len(groups))
	for i, g := range groups {
		out[i] = api.StatusGroup{Key: g.Key, Count: g.Count, Total: g.Total, TotalDisplay: FormatAmount(g.Total, currency)}
	}
	return out
}

func ToApiReport(r *ledger.Report) *api.ReconciliationReport {
	return &api.ReconciliationReport{
		UserId:          r.UserID,
		WalletId:        r.WalletID,
		Balance:         r.Balance,
		Held:            r.Held,
		ExpectedBalance: r.ExpectedBalance,
		ExpectedHeld:    r.ExpectedHeld,
		Transactions:    r.Transactions,
		Consistent:      r.Consistent,
		Settling:        r.Settling,
		Frozen:          r.Frozen,
		CheckedAt:       r.CheckedAt,
	}
}

func ToApiContract(c *models.Contract) api.Contract {
	ids := c.MilestoneIds
	if ids == nil {
		ids = []string{}
	}
	return api.Contract{
		Id:           c.Id,
		JobId:        c.JobId,
		ProposalId:   c.ProposalId,
		ClientId:     c.ClientId,
		FreelancerId: c.FreelancerId,
		TotalAmount:  c.TotalAmount,
		Currency:     c.Currency,
		Status:       string(c.Status),
		EscrowStatus: string(c.EscrowStatus),
		MilestoneIds: ids,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func ToApiMilestone(m *models.Milestone) api.Milestone {
	deliverables := m.Deliverables
	if deliverables == nil {
		deliverables = []string{}
	}
	return api.Milestone{
		Id:           m.Id,
		ContractId:   m.ContractId,
		Title:        m.Title,
		Amount:       m.Amount,
		Currency:     m.Currency,
		Status:       string(m.Status),
		Deliverables: deliverables,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToApiMilestones(ms []models.Milestone) []api.Milestone {
	out := make([]api.Milestone, len(ms))
	for i := range ms {
		out[i] = ToApiMilestone(&ms[i])
	}
	return out
}

func ToApiContractView(v *escrow.ContractView) *api.ContractView {
	return &api.ContractView{Contract: ToApiContract(&v.Contract), Milestones: ToApiMilestones(v.Milestones)}
}

// ToDomainEscrowInput converts an API NewEscrow body; clientID is used when
// the body names no client.
func ToDomainEscrowInput(contractID, clientID string, in *api.NewEscrow) escrow.OpenEscrowInput {
	out := escrow.OpenEscrowInput{
		ContractID:   contractID,
		JobID:        in.JobId,
		ProposalID:   in.ProposalId,
		ClientID:     clientID,
		FreelancerID: in.FreelancerId,
		TotalAmount:  in.TotalAmount,
	}
	if in.ClientId != nil && *in.ClientId != "" {
		out.ClientID = *in.ClientId
	}
	if in.Currency != nil {
		out.Currency = strings.ToLower(*in.Currency)
	}
	for _, m := range in.Milestones {
		out.Milestones = append(out.Milestones, escrow.MilestoneInput{Title: m.Title, Amount: m.Amount})
	}
	return out
}

// ToDomainManualTransaction converts an API ManualTransaction body. Enum
// values are lowercased; the ledger validates them.
func ToDomainManualTransaction(in api.ManualTransaction) *models.Transaction {
	tx := &models.Transaction{
		UserId: in.UserId,
		Amount: in.Amount,
		Type:   models.TransactionType(strings.ToLower(in.Type)),
		Reason: in.Reason,
	}
	if in.WalletId != nil {
		tx.WalletId = *in.WalletId
	}
	if in.Currency != nil {
		tx.Currency = strings.ToLower(*in.Currency)
	}
	if in.Provider != nil {
		tx.Provider = models.Provider(strings.ToLower(*in.Provider))
	}
	if in.ProviderPaymentId != nil {
		tx.ProviderPaymentId = *in.ProviderPaymentId
	}
	if in.Status != nil {
		tx.Status = models.TransactionStatus(strings.ToLower(*in.Status))
	}
	return tx
}
