package websockets

import (
	"context"
	"log/slog"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
)

// Notifier turns completed operations into messages. Failures are logged
// and never fail the operation that triggered them.
type Notifier struct {
	Publisher Publisher
	Wallets   storage.WalletReader
}

func NewNotifier(publisher Publisher, wallets storage.WalletReader) *Notifier {
	if publisher == nil {
		publisher = NoOpPublisher{}
	}
	return &Notifier{Publisher: publisher, Wallets: wallets}
}

// WalletChanged sends userID their current balance after a change.
func (n *Notifier) WalletChanged(ctx context.Context, userID, txID string, change int64) {
	w, err := n.Wallets.GetWallet(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get wallet for websocket message", "user_id", userID, "error", err)
		return
	}
	msg := Message{
		Type: MessageTypeWalletUpdate,
		Payload: WalletUpdatePayload{
			UserID:        userID,
			TransactionID: txID,
			Change:        change,
			NewBalance:    w.Balance,
			Held:          w.HeldTotal(),
		},
	}
	if err := n.Publisher.Publish(ctx, userID, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish websocket message", "user_id", userID, "error", err)
	}
}

// MilestoneChanged tells both parties of contract about m's status.
func (n *Notifier) MilestoneChanged(ctx context.Context, contract *models.Contract, m *models.Milestone) {
	msg := Message{
		Type: MessageTypeMilestoneUpdate,
		Payload: MilestoneUpdatePayload{
			ContractID:  contract.Id,
			MilestoneID: m.Id,
			Status:      string(m.Status),
		},
	}
	for _, userID := range []string{contract.ClientId, contract.FreelancerId} {
		if err := n.Publisher.Publish(ctx, userID, msg); err != nil {
			slog.ErrorContext(ctx, "failed to publish websocket message", "user_id", userID, "error", err)
		}
	}
}
