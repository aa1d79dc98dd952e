package models

import (
	"time"
)

// Wallet holds a user's spendable balance and the funds currently held against
// contracts. Amounts are in the currency's minor unit.
type Wallet struct {
	Id           string    `json:"id" dynamodbav:"id"`
	UserId       string    `json:"user_id" dynamodbav:"user_id"`
	Balance      int64     `json:"balance" dynamodbav:"balance"`
	Currency     string    `json:"currency" dynamodbav:"currency"`
	Holds        []Hold    `json:"holds" dynamodbav:"holds"`
	Version      int64     `json:"version" dynamodbav:"version"`
	Frozen       bool      `json:"frozen" dynamodbav:"frozen"`
	FrozenReason string    `json:"frozen_reason,omitempty" dynamodbav:"frozen_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Hold is an amount set aside from the balance, keyed by the entity it belongs to.
type Hold struct {
	Amount    int64     `json:"amount" dynamodbav:"amount"`
	Reason    string    `json:"reason" dynamodbav:"reason"`
	RelatedId string    `json:"related_id" dynamodbav:"related_id"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Transaction is a single entry of the ledger.
type Transaction struct {
	Id                string            `json:"id" dynamodbav:"id"`
	WalletId          string            `json:"wallet_id" dynamodbav:"wallet_id"`
	UserId            string            `json:"user_id" dynamodbav:"user_id"`
	Amount            int64             `json:"amount" dynamodbav:"amount"`
	Currency          string            `json:"currency" dynamodbav:"currency"`
	Type              TransactionType   `json:"type" dynamodbav:"type"`
	Reason            string            `json:"reason" dynamodbav:"reason"`
	Provider          Provider          `json:"provider" dynamodbav:"provider"`
	ProviderPaymentId string            `json:"provider_payment_id,omitempty" dynamodbav:"provider_payment_id,omitempty"`
	RelatedContract   string            `json:"related_contract,omitempty" dynamodbav:"related_contract,omitempty"`
	RelatedMilestone  string            `json:"related_milestone,omitempty" dynamodbav:"related_milestone,omitempty"`
	HoldRef           string            `json:"hold_ref,omitempty" dynamodbav:"hold_ref,omitempty"`
	Status            TransactionStatus `json:"status" dynamodbav:"status"`
	CreatedAt         time.Time         `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" dynamodbav:"updated_at"`
}

// Contract is the agreement between a client and a freelancer whose funds are escrowed.
type Contract struct {
	Id           string         `json:"id" dynamodbav:"id"`
	JobId        string         `json:"job_id" dynamodbav:"job_id"`
	ProposalId   string         `json:"proposal_id" dynamodbav:"proposal_id"`
	ClientId     string         `json:"client_id" dynamodbav:"client_id"`
	FreelancerId string         `json:"freelancer_id" dynamodbav:"freelancer_id"`
	TotalAmount  int64          `json:"total_amount" dynamodbav:"total_amount"`
	Currency     string         `json:"currency" dynamodbav:"currency"`
	Status       ContractStatus `json:"status" dynamodbav:"status"`
	EscrowStatus EscrowStatus   `json:"escrow_status" dynamodbav:"escrow_status"`
	MilestoneIds []string       `json:"milestone_ids" dynamodbav:"milestone_ids"`
	Version      int64          `json:"version" dynamodbav:"version"`
	CreatedAt    time.Time      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" dynamodbav:"updated_at"`
}

// Milestone is a unit of deliverable work within a contract.
type Milestone struct {
	Id           string          `json:"id" dynamodbav:"id"`
	ContractId   string          `json:"contract_id" dynamodbav:"contract_id"`
	Title        string          `json:"title" dynamodbav:"title"`
	Amount       int64           `json:"amount" dynamodbav:"amount"`
	Currency     string          `json:"currency" dynamodbav:"currency"`
	Status       MilestoneStatus `json:"status" dynamodbav:"status"`
	Deliverables []string        `json:"deliverables,omitempty" dynamodbav:"deliverables,omitempty"`
	Version      int64           `json:"version" dynamodbav:"version"`
	CreatedAt    time.Time       `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" dynamodbav:"updated_at"`
}

// TxMeta carries the descriptive fields of a transaction written alongside a balance change.
type TxMeta struct {
	Reason            string
	Provider          Provider
	ProviderPaymentId string
	RelatedContract   string
	RelatedMilestone  string
}
