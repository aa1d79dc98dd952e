package contracts

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/escrow-wallet/pkg/api"
	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/escrow"
	"github.com/chris/escrow-wallet/pkg/handlers/respond"
	"github.com/chris/escrow-wallet/pkg/mapping"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/websockets"
)

// Coordinator runs the contract and milestone state machine.
type Coordinator interface {
	OpenEscrow(ctx context.Context, p auth.Principal, in escrow.OpenEscrowInput) (*escrow.OpenEscrowResult, error)
	GetContract(ctx context.Context, p auth.Principal, contractID string) (*escrow.ContractView, error)
	Refund(ctx context.Context, p auth.Principal, contractID string) ([]models.Transaction, error)
	Submit(ctx context.Context, p auth.Principal, milestoneID string, deliverables []string) (*models.Milestone, error)
	Approve(ctx context.Context, p auth.Principal, milestoneID string) (*escrow.ApproveResult, error)
	Dispute(ctx context.Context, p auth.Principal, milestoneID string) (*models.Milestone, error)
	ResetDispute(ctx context.Context, p auth.Principal, milestoneID string) (*models.Milestone, error)
	ListContracts(ctx context.Context, p auth.Principal, userID string) ([]models.Contract, error)
	ContractStats(ctx context.Context, p auth.Principal) ([]escrow.StatusGroup, error)
	ListMilestones(ctx context.Context, p auth.Principal, status models.MilestoneStatus) ([]models.Milestone, error)
}

// ContractsHandler holds the dependencies for contract and milestone handlers.
type ContractsHandler struct {
	Escrow   Coordinator
	Currency string
	Notifier *websockets.Notifier
}

// NewContractsHandler creates a new ContractsHandler. Stats totals are
// displayed in currency.
func NewContractsHandler(coordinator Coordinator, currency string, notifier *websockets.Notifier) *ContractsHandler {
	return &ContractsHandler{Escrow: coordinator, Currency: currency, Notifier: notifier}
}

// OpenEscrow creates the contract and holds its total on the client's wallet.
func (h *ContractsHandler) OpenEscrow(w http.ResponseWriter, r *http.Request, contractId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var body api.NewEscrow
	if !respond.Decode(w, r, &body) {
		return
	}

	in := mapping.ToDomainEscrowInput(contractId, p.UserID, &body)
	res, err := h.Escrow.OpenEscrow(r.Context(), p, in)
	if err != nil {
		respond.Error(w, r, "Failed to open escrow", err)
		return
	}
	h.Notifier.WalletChanged(r.Context(), in.ClientID, res.Hold.Id, -res.Hold.Amount)
	respond.JSON(w, http.StatusCreated, api.EscrowResponse{
		HoldId:     res.Hold.Id,
		Contract:   mapping.ToApiContract(&res.Contract),
		Milestones: mapping.ToApiMilestones(res.Milestones),
	})
}

// GetContract returns a contract and its milestones to one of its parties.
func (h *ContractsHandler) GetContract(w http.ResponseWriter, r *http.Request, contractId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	view, err := h.Escrow.GetContract(r.Context(), p, contractId)
	if err != nil {
		respond.Error(w, r, "Failed to retrieve contract", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiContractView(view))
}

// RefundContract returns the remaining escrow to the client.
func (h *ContractsHandler) RefundContract(w http.ResponseWriter, r *http.Request, contractId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	txs, err := h.Escrow.Refund(r.Context(), p, contractId)
	if err != nil {
		respond.Error(w, r, "Failed to refund contract", err)
		return
	}
	ids := make([]string, len(txs))
	var total int64
	for i, tx := range txs {
		ids[i] = tx.Id
		total += tx.Amount
	}
	if len(txs) > 0 {
		h.Notifier.WalletChanged(r.Context(), txs[0].UserId, ids[0], total)
	}
	respond.JSON(w, http.StatusOK, api.RefundContractResponse{TransactionIds: ids})
}

// SubmitMilestone records the freelancer's delivery.
func (h *ContractsHandler) SubmitMilestone(w http.ResponseWriter, r *http.Request, milestoneId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var body api.SubmitMilestone
	if r.ContentLength != 0 && !respond.Decode(w, r, &body) {
		return
	}

	m, err := h.Escrow.Submit(r.Context(), p, milestoneId, body.Deliverables)
	if err != nil {
		respond.Error(w, r, "Failed to submit milestone", err)
		return
	}
	h.notifyMilestone(r.Context(), p, m)
	respond.JSON(w, http.StatusOK, mapping.ToApiMilestone(m))
}

// ApproveMilestone pays the milestone out of escrow to the freelancer.
func (h *ContractsHandler) ApproveMilestone(w http.ResponseWriter, r *http.Request, milestoneId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	res, err := h.Escrow.Approve(r.Context(), p, milestoneId)
	if err != nil {
		respond.Error(w, r, "Failed to approve milestone", err)
		return
	}
	h.Notifier.WalletChanged(r.Context(), res.Contract.ClientId, res.Payout.Id, 0)
	h.Notifier.WalletChanged(r.Context(), res.Contract.FreelancerId, res.Credit.Id, res.Credit.Amount)
	h.Notifier.MilestoneChanged(r.Context(), &res.Contract, &res.Milestone)
	respond.JSON(w, http.StatusOK, api.ApproveResponse{
		TransactionId:       res.Payout.Id,
		CreditTransactionId: res.Credit.Id,
		Milestone:           mapping.ToApiMilestone(&res.Milestone),
		Contract:            mapping.ToApiContract(&res.Contract),
	})
}

// DisputeMilestone freezes the milestone's funds until an admin resolves it.
func (h *ContractsHandler) DisputeMilestone(w http.ResponseWriter, r *http.Request, milestoneId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	m, err := h.Escrow.Dispute(r.Context(), p, milestoneId)
	if err != nil {
		respond.Error(w, r, "Failed to dispute milestone", err)
		return
	}
	h.notifyMilestone(r.Context(), p, m)
	respond.JSON(w, http.StatusOK, mapping.ToApiMilestone(m))
}

// ResetMilestone sends a disputed milestone back to submitted. Admin only.
func (h *ContractsHandler) ResetMilestone(w http.ResponseWriter, r *http.Request, milestoneId string) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	m, err := h.Escrow.ResetDispute(r.Context(), p, milestoneId)
	if err != nil {
		respond.Error(w, r, "Failed to reset milestone", err)
		return
	}
	h.notifyMilestone(r.Context(), p, m)
	respond.JSON(w, http.StatusOK, mapping.ToApiMilestone(m))
}

func (h *ContractsHandler) notifyMilestone(ctx context.Context, p auth.Principal, m *models.Milestone) {
	view, err := h.Escrow.GetContract(ctx, p, m.ContractId)
	if err != nil {
		return
	}
	h.Notifier.MilestoneChanged(ctx, &view.Contract, m)
}

// ListContracts returns the caller's contracts, newest first.
func (h *ContractsHandler) ListContracts(w http.ResponseWriter, r *http.Request, params api.ListContractsParams) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	userID := ""
	if params.UserId != nil {
		userID = *params.UserId
	}

	list, err := h.Escrow.ListContracts(r.Context(), p, userID)
	if err != nil {
		respond.Error(w, r, "Failed to list contracts", err)
		return
	}
	out := make([]api.Contract, len(list))
	for i := range list {
		out[i] = mapping.ToApiContract(&list[i])
	}
	respond.JSON(w, http.StatusOK, out)
}

// GetContractStats counts contracts and sums their totals per status.
func (h *ContractsHandler) GetContractStats(w http.ResponseWriter, r *http.Request) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}

	groups, err := h.Escrow.ContractStats(r.Context(), p)
	if err != nil {
		respond.Error(w, r, "Failed to retrieve contract stats", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiStatusGroups(groups, h.Currency))
}

// ListMilestones returns the milestones of every contract, optionally only
// those in one status.
func (h *ContractsHandler) ListMilestones(w http.ResponseWriter, r *http.Request, params api.ListMilestonesParams) {
	p, ok := respond.Principal(w, r)
	if !ok {
		return
	}
	var status models.MilestoneStatus
	if params.Status != nil {
		status = models.MilestoneStatus(strings.ToLower(*params.Status))
	}

	list, err := h.Escrow.ListMilestones(r.Context(), p, status)
	if err != nil {
		respond.Error(w, r, "Failed to list milestones", err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiMilestones(list))
}
