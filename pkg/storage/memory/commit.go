package memory

import (
	"context"
	"fmt"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// Commit checks every condition of the unit of work, then applies its writes
// in order. If a write fails the store is restored to its state before the call.
func (s *Store) Commit(ctx context.Context, uow *storage.UnitOfWork) error {
	if uow.Len() == 0 {
		return nil
	}
	if uow.Len() > storage.MaxUnitOfWorkItems {
		return fmt.Errorf("%w: %d", storage.ErrTooManyItems, uow.Len())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(uow); err != nil {
		return err
	}

	snap := s.snapshot(uow)
	if err := s.apply(uow); err != nil {
		s.restore(snap)
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}

	uow.Committed()
	return nil
}

func (s *Store) check(uow *storage.UnitOfWork) error {
	seen := make(map[string]bool)
	for _, w := range uow.Wallets {
		if seen[w.UserId] {
			return fmt.Errorf("%w: wallet %s staged twice", models.ErrValidation, w.UserId)
		}
		seen[w.UserId] = true
		if w.Balance < 0 && !w.Frozen {
			return fmt.Errorf("%w: wallet %s would go negative", models.ErrInvariantViolation, w.UserId)
		}
		existing, ok := s.wallets[w.UserId]
		if err := versionMatches(ok, w.Version, func() int64 { return existing.Version }); err != nil {
			return fmt.Errorf("wallet %s: %w", w.UserId, err)
		}
	}
	for _, c := range uow.Contracts {
		existing, ok := s.contracts[c.Id]
		if err := versionMatches(ok, c.Version, func() int64 { return existing.Version }); err != nil {
			return fmt.Errorf("contract %s: %w", c.Id, err)
		}
	}
	for _, m := range uow.Milestones {
		existing, ok := s.milestones[m.Id]
		if err := versionMatches(ok, m.Version, func() int64 { return existing.Version }); err != nil {
			return fmt.Errorf("milestone %s: %w", m.Id, err)
		}
	}
	newIDs := make(map[string]bool)
	for _, tx := range uow.NewTransactions {
		if _, ok := s.transactions[tx.Id]; ok || newIDs[tx.Id] {
			return fmt.Errorf("transaction %s: %w", tx.Id, storage.ErrConflict)
		}
		newIDs[tx.Id] = true
	}
	for _, sc := range uow.StatusChanges {
		tx, ok := s.transactions[sc.TransactionID]
		if !ok || tx.Status != sc.From {
			return fmt.Errorf("transaction %s status: %w", sc.TransactionID, storage.ErrConflict)
		}
	}
	return nil
}

func versionMatches(exists bool, version int64, stored func() int64) error {
	if version == 0 {
		if exists {
			return storage.ErrConflict
		}
		return nil
	}
	if !exists || stored() != version {
		return storage.ErrConflict
	}
	return nil
}

type snapshot struct {
	wallets      map[string]*models.Wallet
	contracts    map[string]*models.Contract
	milestones   map[string]*models.Milestone
	transactions map[string]*models.Transaction
	seq          map[string]int
	next         int
}

func (s *Store) snapshot(uow *storage.UnitOfWork) snapshot {
	snap := snapshot{
		wallets:      make(map[string]*models.Wallet),
		contracts:    make(map[string]*models.Contract),
		milestones:   make(map[string]*models.Milestone),
		transactions: make(map[string]*models.Transaction),
		seq:          make(map[string]int, len(s.seq)),
		next:         s.next,
	}
	for k, v := range s.seq {
		snap.seq[k] = v
	}
	for _, w := range uow.Wallets {
		snap.wallets[w.UserId] = s.wallets[w.UserId]
	}
	for _, c := range uow.Contracts {
		snap.contracts[c.Id] = s.contracts[c.Id]
	}
	for _, m := range uow.Milestones {
		snap.milestones[m.Id] = s.milestones[m.Id]
	}
	for _, tx := range uow.NewTransactions {
		snap.transactions[tx.Id] = nil
	}
	for _, sc := range uow.StatusChanges {
		snap.transactions[sc.TransactionID] = s.transactions[sc.TransactionID]
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	for k, v := range snap.wallets {
		restoreEntry(s.wallets, k, v)
	}
	for k, v := range snap.contracts {
		restoreEntry(s.contracts, k, v)
	}
	for k, v := range snap.milestones {
		restoreEntry(s.milestones, k, v)
	}
	for k, v := range snap.transactions {
		restoreEntry(s.transactions, k, v)
	}
	s.seq = snap.seq
	s.next = snap.next
}

func restoreEntry[T any](m map[string]*T, key string, prev *T) {
	if prev == nil {
		delete(m, key)
		return
	}
	m[key] = prev
}

func (s *Store) apply(uow *storage.UnitOfWork) error {
	step := 0
	fault := func() error {
		step++
		if s.fault != nil {
			return s.fault(step)
		}
		return nil
	}

	for _, w := range uow.Wallets {
		if err := fault(); err != nil {
			return err
		}
		stored := w.Clone()
		if stored.Version == 0 {
			stored.CreatedAt = uow.Now
			s.track(stored.Id)
		}
		stored.Version++
		stored.UpdatedAt = uow.Now
		s.wallets[w.UserId] = stored
	}
	for _, c := range uow.Contracts {
		if err := fault(); err != nil {
			return err
		}
		stored := c.Clone()
		if stored.Version == 0 {
			stored.CreatedAt = uow.Now
			s.track(stored.Id)
		}
		stored.Version++
		stored.UpdatedAt = uow.Now
		s.contracts[c.Id] = stored
	}
	for _, m := range uow.Milestones {
		if err := fault(); err != nil {
			return err
		}
		stored := m.Clone()
		if stored.Version == 0 {
			stored.CreatedAt = uow.Now
			s.track(stored.Id)
		}
		stored.Version++
		stored.UpdatedAt = uow.Now
		s.milestones[m.Id] = stored
	}
	for _, tx := range uow.NewTransactions {
		if err := fault(); err != nil {
			return err
		}
		stored := tx
		s.transactions[tx.Id] = &stored
		s.track(tx.Id)
	}
	for _, sc := range uow.StatusChanges {
		if err := fault(); err != nil {
			return err
		}
		updated := *s.transactions[sc.TransactionID]
		updated.Status = sc.To
		updated.UpdatedAt = uow.Now
		s.transactions[sc.TransactionID] = &updated
	}
	return nil
}

func (s *Store) track(id string) {
	s.next++
	s.seq[id] = s.next
}
