// Package escrow funds contracts from the client's wallet and pays the
// freelancer milestone by milestone.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/chris/escrow-wallet/pkg/wallet"
	"github.com/google/uuid"
)

const (
	// HoldReason marks the hold that funds a whole contract.
	HoldReason = "contract-escrow"
	// DisputeHoldReason marks a milestone's share split off the contract hold.
	DisputeHoldReason = "milestone-dispute"

	// MaxMilestones keeps an escrow opening within one unit of work.
	MaxMilestones = 50
)

// Store is the storage a Coordinator needs.
type Store interface {
	storage.EscrowReader
	storage.WalletReader
	storage.Committer
}

// Coordinator runs the escrow lifecycle of contracts and their milestones.
// Every operation commits the contract, milestone and wallet changes it makes
// as a single unit of work.
type Coordinator struct {
	Store    Store
	Wallets  *wallet.Service
	Attempts int
	Now      func() time.Time
}

func NewCoordinator(store Store, wallets *wallet.Service) *Coordinator {
	return &Coordinator{
		Store:    store,
		Wallets:  wallets,
		Attempts: storage.DefaultAttempts,
		Now:      time.Now,
	}
}

// MilestoneInput describes a milestone to create with the contract.
type MilestoneInput struct {
	Title  string
	Amount int64
}

// OpenEscrowInput describes the contract whose funds are escrowed.
type OpenEscrowInput struct {
	ContractID   string
	JobID        string
	ProposalID   string
	ClientID     string
	FreelancerID string
	TotalAmount  int64
	Currency     string
	Milestones   []MilestoneInput
}

// OpenEscrowResult is what OpenEscrow created.
type OpenEscrowResult struct {
	Contract   models.Contract
	Milestones []models.Milestone
	Hold       models.Transaction
}

// ApproveResult is what Approve changed.
type ApproveResult struct {
	Payout    models.Transaction
	Credit    models.Transaction
	Milestone models.Milestone
	Contract  models.Contract
}

// ContractView is a contract with its milestones.
type ContractView struct {
	Contract   models.Contract
	Milestones []models.Milestone
}

func (in *OpenEscrowInput) validate() error {
	if in.ClientID == "" || in.FreelancerID == "" {
		return fmt.Errorf("%w: client and freelancer are required", models.ErrValidation)
	}
	if in.ClientID == in.FreelancerID {
		return fmt.Errorf("%w: client and freelancer must differ", models.ErrValidation)
	}
	if in.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", models.ErrValidation)
	}
	if len(in.Milestones) > MaxMilestones {
		return fmt.Errorf("%w: at most %d milestones", models.ErrValidation, MaxMilestones)
	}
	if len(in.Milestones) == 0 {
		return nil
	}
	var sum int64
	for i, m := range in.Milestones {
		if m.Title == "" {
			return fmt.Errorf("%w: milestone %d needs a title", models.ErrValidation, i+1)
		}
		if m.Amount <= 0 {
			return fmt.Errorf("%w: milestone %d amount must be positive", models.ErrValidation, i+1)
		}
		if m.Amount > math.MaxInt64-sum {
			return fmt.Errorf("%w: milestone amounts overflow", models.ErrValidation)
		}
		sum += m.Amount
	}
	if sum != in.TotalAmount {
		return fmt.Errorf("%w: milestones sum to %d, contract total is %d", models.ErrValidation, sum, in.TotalAmount)
	}
	return nil
}

// OpenEscrow creates the contract and its milestones and holds the contract
// total on the client's wallet, all in one commit. If the client cannot cover
// the total nothing is written.
func (c *Coordinator) OpenEscrow(ctx context.Context, p auth.Principal, in OpenEscrowInput) (*OpenEscrowResult, error) {
	if err := p.RequireActFor(in.ClientID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	contractID := in.ContractID
	if contractID == "" {
		contractID = uuid.New().String()
	}
	inputs := in.Milestones
	if len(inputs) == 0 {
		inputs = []MilestoneInput{{Title: "Full contract", Amount: in.TotalAmount}}
	}

	var result *OpenEscrowResult
	err := storage.RetryOnConflict(ctx, c.Attempts, func() error {
		if _, err := c.Store.GetContract(ctx, contractID); err == nil {
			return fmt.Errorf("escrow for contract %s: %w", contractID, models.ErrAlreadyHeld)
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		client, err := c.Wallets.LoadForUpdate(ctx, in.ClientID, true)
		if err != nil {
			return err
		}
		currency := in.Currency
		if currency == "" {
			currency = client.Currency
		}
		if currency != client.Currency {
			return fmt.Errorf("%w: contract currency %s does not match client wallet currency %s", models.ErrValidation, currency, client.Currency)
		}

		uow := storage.NewUnitOfWork(c.Now())
		hold, err := c.Wallets.StagePlaceHold(uow, client, in.TotalAmount, HoldReason, contractID, models.TxMeta{
			Reason:          HoldReason,
			RelatedContract: contractID,
		})
		if err != nil {
			return err
		}

		contract := &models.Contract{
			Id:           contractID,
			JobId:        in.JobID,
			ProposalId:   in.ProposalID,
			ClientId:     in.ClientID,
			FreelancerId: in.FreelancerID,
			TotalAmount:  in.TotalAmount,
			Currency:     currency,
			Status:       models.ContractActive,
			EscrowStatus: models.EscrowFundsHeld,
		}
		milestones := make([]*models.Milestone, 0, len(inputs))
		for _, mi := range inputs {
			m := &models.Milestone{
				Id:         uuid.New().String(),
				ContractId: contractID,
				Title:      mi.Title,
				Amount:     mi.Amount,
				Currency:   currency,
				Status:     models.MilestonePending,
			}
			contract.MilestoneIds = append(contract.MilestoneIds, m.Id)
			milestones = append(milestones, m)
		}

		uow.PutContract(contract)
		for _, m := range milestones {
			uow.PutMilestone(m)
		}
		if err := c.Store.Commit(ctx, uow); err != nil {
			return err
		}

		result = &OpenEscrowResult{Contract: *contract, Hold: hold}
		for _, m := range milestones {
			result.Milestones = append(result.Milestones, *m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "escrow opened",
		"contract_id", contractID, "client_id", in.ClientID, "freelancer_id", in.FreelancerID, "amount", in.TotalAmount)
	return result, nil
}

// Submit marks a pending milestone as delivered.
func (c *Coordinator) Submit(ctx context.Context, p auth.Principal, milestoneID string, deliverables []string) (*models.Milestone, error) {
	var result *models.Milestone
	err := storage.RetryOnConflict(ctx, c.Attempts, func() error {
		m, contract, err := c.load(ctx, milestoneID)
		if err != nil {
			return err
		}
		if !p.Privileged() && p.UserID != contract.FreelancerId {
			return fmt.Errorf("%w: only the freelancer can submit milestone %s", models.ErrUnauthorized, m.Id)
		}
		if err := requireOpen(contract); err != nil {
			return err
		}
		if !m.Status.CanTransitionTo(models.MilestoneSubmitted) {
			return fmt.Errorf("milestone %s is %s, cannot submit: %w", m.Id, m.Status, models.ErrInvalidState)
		}

		m.Status = models.MilestoneSubmitted
		if len(deliverables) > 0 {
			m.Deliverables = deliverables
		}
		uow := storage.NewUnitOfWork(c.Now())
		uow.PutMilestone(m)
		if err := c.Store.Commit(ctx, uow); err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "milestone submitted", "milestone_id", milestoneID)
	return result, nil
}

// Approve pays a submitted milestone to the freelancer. The milestone's own
// hold is used when a dispute split one off; otherwise its amount comes out
// of the contract hold. When no milestone is left outstanding the contract is
// completed and its escrow released.
func (c *Coordinator) Approve(ctx context.Context, p auth.Principal, milestoneID string) (*ApproveResult, error) {
	var result *ApproveResult
	err := storage.RetryOnConflict(ctx, c.Attempts, func() error {
		m, contract, err := c.load(ctx, milestoneID)
		if err != nil {
			return err
		}
		if !p.Privileged() && p.UserID != contract.ClientId {
			return fmt.Errorf("%w: only the client can approve milestone %s", models.ErrUnauthorized, m.Id)
		}
		if err := requireFunded(contract); err != nil {
			return err
		}
		if !m.Status.CanTransitionTo(models.MilestoneApproved) {
			return fmt.Errorf("milestone %s is %s, cannot approve: %w", m.Id, m.Status, models.ErrInvalidState)
		}

		client, err := c.Wallets.LoadForUpdate(ctx, contract.ClientId, false)
		if err != nil {
			return err
		}
		freelancer, err := c.Wallets.LoadForUpdate(ctx, contract.FreelancerId, true)
		if err != nil {
			return err
		}

		uow := storage.NewUnitOfWork(c.Now())
		meta := models.TxMeta{
			Reason:           "milestone payout",
			RelatedContract:  contract.Id,
			RelatedMilestone: m.Id,
		}
		dest := wallet.OtherWallet(contract.FreelancerId)
		var txs []models.Transaction
		if _, ok := client.FindHold(m.Id); ok {
			txs, err = c.Wallets.StageReleaseHold(uow, client, m.Id, dest, freelancer, meta)
		} else {
			txs, err = c.Wallets.StageReleasePartial(uow, client, contract.Id, m.Amount, dest, freelancer, meta)
		}
		if err != nil {
			return err
		}

		m.Status = models.MilestoneReleased
		uow.PutMilestone(m)

		outstanding, err := c.outstanding(ctx, contract.Id, m.Id)
		if err != nil {
			return err
		}
		if outstanding == 0 {
			contract.EscrowStatus = models.EscrowReleased
			if contract.Status.CanTransitionTo(models.ContractCompleted) {
				contract.Status = models.ContractCompleted
			}
		}
		// The contract is written on every payout so a concurrent refund of
		// the same contract loses its version check.
		uow.PutContract(contract)

		if err := c.Store.Commit(ctx, uow); err != nil {
			return err
		}
		result = &ApproveResult{Payout: txs[0], Credit: txs[1], Milestone: *m, Contract: *contract}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "milestone released",
		"milestone_id", milestoneID, "contract_id", result.Contract.Id, "amount", result.Milestone.Amount)
	return result, nil
}

// Dispute freezes a submitted or approved milestone. Its share of the
// contract hold is split into a hold of its own; no balance moves.
func (c *Coordinator) Dispute(ctx context.Context, p auth.Principal, milestoneID string) (*models.Milestone, error) {
	var result *models.Milestone
	err := storage.RetryOnConflict(ctx, c.Attempts, func() error {
		m, contract, err := c.load(ctx, milestoneID)
		if err != nil {
			return err
		}
		if !canAccess(p, contract) {
			return fmt.Errorf("%w: not a party to contract %s", models.ErrUnauthorized, contract.Id)
		}
		if err := requireFunded(contract); err != nil {
			return err
		}
		if !m.Status.CanTransitionTo(models.MilestoneDisputed) {
			return fmt.Errorf("milestone %s is %s, cannot dispute: %w", m.Id, m.Status, models.ErrInvalidState)
		}

		uow := storage.NewUnitOfWork(c.Now())
		client, err := c.Wallets.LoadForUpdate(ctx, contract.ClientId, false)
		if err != nil {
			return err
		}
		if _, ok := client.FindHold(m.Id); !ok {
			if err := client.SplitHold(contract.Id, m.Id, m.Amount, DisputeHoldReason, uow.Now); err != nil {
				return fmt.Errorf("wallet for user ID %s: %w", client.UserId, err)
			}
			uow.PutWallet(client)
		}

		m.Status = models.MilestoneDisputed
		uow.PutMilestone(m)
		contract.Status = models.ContractDisputed
		uow.PutContract(contract)

		if err := c.Store.Commit(ctx, uow); err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.WarnContext(ctx, "milestone disputed", "milestone_id", milestoneID, "by", p.UserID)
	return result, nil
}

// ResetDispute is the admin override that returns a disputed milestone to
// submitted. Its hold stays split off so a later approval or refund finds it.
func (c *Coordinator) ResetDispute(ctx context.Context, p auth.Principal, milestoneID string) (*models.Milestone, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}

	var result *models.Milestone
	err := storage.RetryOnConflict(ctx, c.Attempts, func() error {
		m, contract, err := c.load(ctx, milestoneID)
		if err != nil {
			return err
		}
		if !m.Status.CanReset() {
			return fmt.Errorf("milestone %s is %s, not disputed: %w", m.Id, m.Status, models.ErrInvalidState)
		}

		m.Status = models.MilestoneSubmitted
		uow := storage.NewUnitOfWork(c.Now())
		uow.PutMilestone(m)

		disputed, err := c.countStatus(ctx, contract.Id, m.Id, models.MilestoneDisputed)
		if err != nil {
			return err
		}
		if disputed == 0 && contract.Status == models.ContractDisputed {
			contract.Status = models.ContractActive
		}
		uow.PutContract(contract)

		if err := c.Store.Commit(ctx, uow); err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "milestone dispute reset", "milestone_id", milestoneID, "by", p.UserID)
	return result, nil
}

// Refund returns every remaining hold of the contract to the client and
// terminates it. A contract with a disputed milestone cannot be refunded
// until the dispute is resolved.
func (c *Coordinator) Refund(ctx context.Context, p auth.Principal, contractID string) ([]models.Transaction, error) {
	var result []models.Transaction
	err := storage.RetryOnConflict(ctx, c.Attempts, func() error {
		contract, err := c.Store.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if !p.Privileged() && p.UserID != contract.ClientId {
			return fmt.Errorf("%w: only the client can refund contract %s", models.ErrUnauthorized, contract.Id)
		}
		if contract.EscrowStatus != models.EscrowFundsHeld {
			return fmt.Errorf("contract %s escrow is %s: %w", contract.Id, contract.EscrowStatus, models.ErrInvalidState)
		}
		milestones, err := c.Store.ListMilestones(ctx, contract.Id)
		if err != nil {
			return err
		}

		client, err := c.Wallets.LoadForUpdate(ctx, contract.ClientId, false)
		if err != nil {
			return err
		}

		uow := storage.NewUnitOfWork(c.Now())
		meta := models.TxMeta{Reason: "contract refund", RelatedContract: contract.Id}
		var txs []models.Transaction
		release := func(relatedID string, meta models.TxMeta) error {
			if _, ok := client.FindHold(relatedID); !ok {
				return nil
			}
			released, err := c.Wallets.StageReleaseHold(uow, client, relatedID, wallet.SameWallet(), nil, meta)
			if err != nil {
				return err
			}
			txs = append(txs, released...)
			return nil
		}

		for i := range milestones {
			m := &milestones[i]
			if m.Status == models.MilestoneDisputed {
				return fmt.Errorf("milestone %s is disputed: %w", m.Id, models.ErrInvalidState)
			}
			if !m.Status.Outstanding() {
				continue
			}
			mm := meta
			mm.RelatedMilestone = m.Id
			if err := release(m.Id, mm); err != nil {
				return err
			}
		}
		if err := release(contract.Id, meta); err != nil {
			return err
		}

		contract.EscrowStatus = models.EscrowRefunded
		if contract.Status.CanTransitionTo(models.ContractTerminated) {
			contract.Status = models.ContractTerminated
		}
		uow.PutContract(contract)

		if err := c.Store.Commit(ctx, uow); err != nil {
			return err
		}
		result = txs
		return nil
	})
	if err != nil {
		return nil, err
	}

	var total int64
	for _, tx := range result {
		total += tx.Amount
	}
	slog.InfoContext(ctx, "contract refunded", "contract_id", contractID, "amount", total)
	if result == nil {
		result = []models.Transaction{}
	}
	return result, nil
}

// GetContract returns a contract and its milestones to one of its parties.
func (c *Coordinator) GetContract(ctx context.Context, p auth.Principal, contractID string) (*ContractView, error) {
	contract, err := c.Store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !canAccess(p, contract) {
		return nil, fmt.Errorf("%w: not a party to contract %s", models.ErrUnauthorized, contract.Id)
	}
	milestones, err := c.Store.ListMilestones(ctx, contract.Id)
	if err != nil {
		return nil, err
	}
	if milestones == nil {
		milestones = []models.Milestone{}
	}
	return &ContractView{Contract: *contract, Milestones: milestones}, nil
}

func (c *Coordinator) load(ctx context.Context, milestoneID string) (*models.Milestone, *models.Contract, error) {
	m, err := c.Store.GetMilestone(ctx, milestoneID)
	if err != nil {
		return nil, nil, err
	}
	contract, err := c.Store.GetContract(ctx, m.ContractId)
	if err != nil {
		return nil, nil, err
	}
	return m, contract, nil
}

// outstanding counts the milestones of the contract other than skipID that
// still have funds in escrow.
func (c *Coordinator) outstanding(ctx context.Context, contractID, skipID string) (int, error) {
	milestones, err := c.Store.ListMilestones(ctx, contractID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range milestones {
		if m.Id != skipID && m.Status.Outstanding() {
			n++
		}
	}
	return n, nil
}

func (c *Coordinator) countStatus(ctx context.Context, contractID, skipID string, status models.MilestoneStatus) (int, error) {
	milestones, err := c.Store.ListMilestones(ctx, contractID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range milestones {
		if m.Id != skipID && m.Status == status {
			n++
		}
	}
	return n, nil
}

func canAccess(p auth.Principal, contract *models.Contract) bool {
	return p.Privileged() || p.UserID == contract.ClientId || p.UserID == contract.FreelancerId
}

func requireOpen(contract *models.Contract) error {
	if !contract.Status.Open() {
		return fmt.Errorf("contract %s is %s: %w", contract.Id, contract.Status, models.ErrInvalidState)
	}
	return nil
}

func requireFunded(contract *models.Contract) error {
	if err := requireOpen(contract); err != nil {
		return err
	}
	if contract.EscrowStatus != models.EscrowFundsHeld {
		return fmt.Errorf("contract %s escrow is %s: %w", contract.Id, contract.EscrowStatus, models.ErrInvalidState)
	}
	return nil
}
