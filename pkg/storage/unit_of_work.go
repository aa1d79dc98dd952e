package storage

import (
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/google/uuid"
)

// MaxUnitOfWorkItems is the largest number of writes a single commit accepts.
// It matches the DynamoDB TransactWriteItems limit.
const MaxUnitOfWorkItems = 100

// StatusChange moves a stored transaction from one status to another. The
// commit fails with ErrConflict if the stored status is no longer From.
type StatusChange struct {
	TransactionID string
	From          models.TransactionStatus
	To            models.TransactionStatus
}

// UnitOfWork collects the writes of one business operation.
//
// Wallets, contracts and milestones are written whole and conditioned on the
// Version they were read with; Version 0 means the entity is new. New
// transactions must not exist yet. On a successful commit the store bumps
// Version and UpdatedAt on the staged entities.
type UnitOfWork struct {
	// Token identifies the commit so a resent request is applied once.
	Token string
	Now   time.Time

	Wallets         []*models.Wallet
	Contracts       []*models.Contract
	Milestones      []*models.Milestone
	NewTransactions []models.Transaction
	StatusChanges   []StatusChange
}

// NewUnitOfWork starts an empty unit of work stamped with now and a fresh token.
func NewUnitOfWork(now time.Time) *UnitOfWork {
	return &UnitOfWork{Token: uuid.New().String(), Now: now.UTC()}
}

// PutWallet stages a wallet write. Staging the same wallet twice is a no-op.
func (u *UnitOfWork) PutWallet(w *models.Wallet) {
	for _, existing := range u.Wallets {
		if existing == w {
			return
		}
	}
	u.Wallets = append(u.Wallets, w)
}

func (u *UnitOfWork) PutContract(c *models.Contract) {
	for _, existing := range u.Contracts {
		if existing == c {
			return
		}
	}
	u.Contracts = append(u.Contracts, c)
}

func (u *UnitOfWork) PutMilestone(m *models.Milestone) {
	for _, existing := range u.Milestones {
		if existing == m {
			return
		}
	}
	u.Milestones = append(u.Milestones, m)
}

func (u *UnitOfWork) AddTransaction(tx models.Transaction) {
	u.NewTransactions = append(u.NewTransactions, tx)
}

func (u *UnitOfWork) ChangeStatus(txID string, from, to models.TransactionStatus) {
	u.StatusChanges = append(u.StatusChanges, StatusChange{TransactionID: txID, From: from, To: to})
}

// Len is the number of writes in the unit.
func (u *UnitOfWork) Len() int {
	return len(u.Wallets) + len(u.Contracts) + len(u.Milestones) + len(u.NewTransactions) + len(u.StatusChanges)
}

// Committed bumps versions and timestamps on the staged entities. Stores call it
// after the writes are durable.
func (u *UnitOfWork) Committed() {
	for _, w := range u.Wallets {
		if w.Version == 0 {
			w.CreatedAt = u.Now
		}
		w.Version++
		w.UpdatedAt = u.Now
	}
	for _, c := range u.Contracts {
		if c.Version == 0 {
			c.CreatedAt = u.Now
		}
		c.Version++
		c.UpdatedAt = u.Now
	}
	for _, m := range u.Milestones {
		if m.Version == 0 {
			m.CreatedAt = u.Now
		}
		m.Version++
		m.UpdatedAt = u.Now
	}
}
