package storage

import (
	"context"

	"github.com/chris/escrow-wallet/pkg/models"
)

// WalletReader defines the interface for reading wallets.
type WalletReader interface {
	// GetWallet retrieves a user's wallet by their user ID. It returns an error
	// wrapping models.ErrNotFound when the user has no wallet.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// ListWallets retrieves all wallets from the storage.
	ListWallets(ctx context.Context) ([]models.Wallet, error)
}
