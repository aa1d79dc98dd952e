package storage

import (
	"context"

	"github.com/chris/escrow-wallet/pkg/models"
)

// EscrowReader defines the interface for reading contracts and milestones.
type EscrowReader interface {
	GetContract(ctx context.Context, contractID string) (*models.Contract, error)
	GetMilestone(ctx context.Context, milestoneID string) (*models.Milestone, error)

	// ListMilestones returns the milestones of a contract in creation order.
	ListMilestones(ctx context.Context, contractID string) ([]models.Milestone, error)

	// ListContracts returns the contracts userID is a party to, newest first.
	// An empty userID lists every contract.
	ListContracts(ctx context.Context, userID string) ([]models.Contract, error)
}
