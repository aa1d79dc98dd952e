package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// FaultFunc is called before each write of a commit is applied. Returning an
// error aborts the commit; the writes applied so far are rolled back.
type FaultFunc func(step int) error

// Store implements the Storage interface in process memory. It backs local
// development and the service tests.
type Store struct {
	mu           sync.RWMutex
	wallets      map[string]*models.Wallet
	transactions map[string]*models.Transaction
	contracts    map[string]*models.Contract
	milestones   map[string]*models.Milestone
	seq          map[string]int
	next         int
	fault        FaultFunc
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		wallets:      make(map[string]*models.Wallet),
		transactions: make(map[string]*models.Transaction),
		contracts:    make(map[string]*models.Contract),
		milestones:   make(map[string]*models.Milestone),
		seq:          make(map[string]int),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// InjectFault installs f for subsequent commits. Pass nil to clear it.
func (s *Store) InjectFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

func (s *Store) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s: %w", userID, models.ErrNotFound)
	}
	return w.Clone(), nil
}

func (s *Store) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make([]models.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		wallets = append(wallets, *w.Clone())
	}
	sort.Slice(wallets, func(i, j int) bool { return s.seq[wallets[i].Id] < s.seq[wallets[j].Id] })
	return wallets, nil
}

func (s *Store) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	c := *tx
	return &c, nil
}

func (s *Store) GetTransactionByProviderPaymentID(ctx context.Context, providerPaymentID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.ProviderPaymentId == providerPaymentID {
			c := *tx
			return &c, nil
		}
	}
	return nil, fmt.Errorf("transaction for payment %s: %w", providerPaymentID, models.ErrNotFound)
}

func (s *Store) ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]models.Transaction, error) {
	if filter.Empty() {
		return nil, fmt.Errorf("%w: transaction filter requires a key", models.ErrValidation)
	}
	return s.collect(func(tx *models.Transaction) bool { return filter.Matches(tx) }), nil
}

func (s *Store) GetStaleTransactions(ctx context.Context, status models.TransactionStatus, maxAge time.Duration) ([]models.Transaction, error) {
	cutoff := time.Now().Add(-maxAge)
	return s.collect(func(tx *models.Transaction) bool {
		return tx.Status == status && !tx.CreatedAt.After(cutoff)
	}), nil
}

func (s *Store) ScanTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.collect(func(*models.Transaction) bool { return true }), nil
}

// collect returns matching transactions newest first.
func (s *Store) collect(match func(*models.Transaction) bool) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range s.transactions {
		if match(tx) {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].Id] > s.seq[out[j].Id]
	})
	return out
}

func (s *Store) GetContract(ctx context.Context, contractID string) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[contractID]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", contractID, models.ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *Store) GetMilestone(ctx context.Context, milestoneID string) (*models.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.milestones[milestoneID]
	if !ok {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, models.ErrNotFound)
	}
	return m.Clone(), nil
}

func (s *Store) ListMilestones(ctx context.Context, contractID string) ([]models.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Milestone
	for _, m := range s.milestones {
		if m.ContractId == contractID {
			out = append(out, *m.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].Id] < s.seq[out[j].Id] })
	return out, nil
}

func (s *Store) ListContracts(ctx context.Context, userID string) ([]models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Contract
	for _, c := range s.contracts {
		if userID == "" || c.ClientId == userID || c.FreelancerId == userID {
			out = append(out, *c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].Id] > s.seq[out[j].Id] })
	return out, nil
}
