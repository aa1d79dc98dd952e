package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeWalletUpdate is for messages that update wallet balances.
	MessageTypeWalletUpdate MessageType = "walletUpdate"
	// MessageTypeMilestoneUpdate tells contract parties a milestone moved.
	MessageTypeMilestoneUpdate MessageType = "milestoneUpdate"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// WalletUpdatePayload is the payload for a walletUpdate message.
type WalletUpdatePayload struct {
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Change        int64  `json:"change"`
	NewBalance    int64  `json:"new_balance"`
	Held          int64  `json:"held"`
}

// MilestoneUpdatePayload is the payload for a milestoneUpdate message.
type MilestoneUpdatePayload struct {
	ContractID  string `json:"contract_id"`
	MilestoneID string `json:"milestone_id"`
	Status      string `json:"status"`
}
