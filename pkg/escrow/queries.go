package escrow

import (
	"context"
	"fmt"
	"sort"

	"github.com/chris/escrow-wallet/pkg/auth"
	"github.com/chris/escrow-wallet/pkg/models"
)

// StatusGroup counts the contracts in one status and sums their totals.
type StatusGroup struct {
	Key   string
	Count int
	Total int64
}

// ListContracts returns the contracts userID is a party to, newest first.
// Callers other than admins only list their own; an admin passing no userID
// lists every contract.
func (c *Coordinator) ListContracts(ctx context.Context, p auth.Principal, userID string) ([]models.Contract, error) {
	if userID == "" && !p.Privileged() {
		userID = p.UserID
	}
	if userID != "" {
		if err := p.RequireActFor(userID); err != nil {
			return nil, err
		}
	}

	contracts, err := c.Store.ListContracts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	return contracts, nil
}

// ContractStats groups every contract by status. Statuses without contracts
// are reported with zero counts.
func (c *Coordinator) ContractStats(ctx context.Context, p auth.Principal) ([]StatusGroup, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	contracts, err := c.Store.ListContracts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	groups := make([]StatusGroup, len(models.ContractStatuses))
	index := make(map[models.ContractStatus]int, len(groups))
	for i, status := range models.ContractStatuses {
		groups[i].Key = string(status)
		index[status] = i
	}
	for _, contract := range contracts {
		i, ok := index[contract.Status]
		if !ok {
			continue
		}
		groups[i].Count++
		groups[i].Total += contract.TotalAmount
	}
	return groups, nil
}

// ListMilestones returns the milestones of every contract, newest first,
// optionally only those in status.
func (c *Coordinator) ListMilestones(ctx context.Context, p auth.Principal, status models.MilestoneStatus) ([]models.Milestone, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown milestone status %q", models.ErrValidation, status)
	}

	contracts, err := c.Store.ListContracts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	out := []models.Milestone{}
	for _, contract := range contracts {
		milestones, err := c.Store.ListMilestones(ctx, contract.Id)
		if err != nil {
			return nil, err
		}
		for _, m := range milestones {
			if status == "" || m.Status == status {
				out = append(out, m)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
