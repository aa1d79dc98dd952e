package storage

import "context"

// Committer applies a unit of work atomically: either every write in it
// becomes visible or none does.
type Committer interface {
	Commit(ctx context.Context, uow *UnitOfWork) error
}

// Storage defines the root interface for the entire data layer.
// It composes all available storage operations. Components should depend on the
// more granular interfaces (WalletReader, TransactionReader, etc.) instead of this one.
type Storage interface {
	WalletReader
	TransactionReader
	EscrowReader
	Committer
}
