package models

// TransactionStatus defines the possible states of a ledger transaction.
type TransactionStatus string

const (
	TransactionInitiated TransactionStatus = "initiated"
	TransactionSucceeded TransactionStatus = "succeeded"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// TransactionStatuses lists every status in display order.
var TransactionStatuses = []TransactionStatus{TransactionInitiated, TransactionSucceeded, TransactionFailed, TransactionRefunded}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionInitiated, TransactionSucceeded, TransactionFailed, TransactionRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the ledger allows moving from s to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionInitiated:
		return next == TransactionSucceeded || next == TransactionFailed
	case TransactionSucceeded:
		return next == TransactionRefunded
	case TransactionFailed, TransactionRefunded:
		return false
	}
	return false
}

// Settled reports whether the transaction moved money. A refunded transaction
// did, and its reversal is recorded as a separate transaction.
func (s TransactionStatus) Settled() bool {
	switch s {
	case TransactionSucceeded, TransactionRefunded:
		return true
	case TransactionInitiated, TransactionFailed:
		return false
	}
	return false
}

// TransactionType is the direction of a ledger transaction relative to its wallet.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
	TransactionPayout TransactionType = "payout"
	TransactionFee    TransactionType = "fee"
	TransactionRefund TransactionType = "refund"
)

var TransactionTypes = []TransactionType{TransactionCredit, TransactionDebit, TransactionPayout, TransactionFee, TransactionRefund}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionCredit, TransactionDebit, TransactionPayout, TransactionFee, TransactionRefund:
		return true
	}
	return false
}

// Provider is where the money of a transaction came from or went to.
type Provider string

const (
	ProviderInternal Provider = "internal"
	ProviderGateway  Provider = "gateway"
	ProviderBank     Provider = "bank"
)

var Providers = []Provider{ProviderInternal, ProviderGateway, ProviderBank}

func (p Provider) Valid() bool {
	switch p {
	case ProviderInternal, ProviderGateway, ProviderBank:
		return true
	}
	return false
}

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractPending    ContractStatus = "pending"
	ContractActive     ContractStatus = "active"
	ContractPaused     ContractStatus = "paused"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
	ContractDisputed   ContractStatus = "disputed"
)

var ContractStatuses = []ContractStatus{ContractPending, ContractActive, ContractPaused, ContractCompleted, ContractTerminated, ContractDisputed}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractPending, ContractActive, ContractPaused, ContractCompleted, ContractTerminated, ContractDisputed:
		return true
	}
	return false
}

func (s ContractStatus) CanTransitionTo(next ContractStatus) bool {
	switch s {
	case ContractPending:
		return next == ContractActive || next == ContractTerminated
	case ContractActive:
		return next == ContractPaused || next == ContractCompleted || next == ContractTerminated || next == ContractDisputed
	case ContractPaused:
		return next == ContractActive || next == ContractTerminated
	case ContractDisputed:
		return next == ContractActive || next == ContractCompleted || next == ContractTerminated
	case ContractCompleted, ContractTerminated:
		return false
	}
	return false
}

// Open reports whether milestones of the contract can still progress.
func (s ContractStatus) Open() bool {
	switch s {
	case ContractActive, ContractDisputed:
		return true
	case ContractPending, ContractPaused, ContractCompleted, ContractTerminated:
		return false
	}
	return false
}

// EscrowStatus tracks the funds backing a contract.
type EscrowStatus string

const (
	EscrowNotRequired EscrowStatus = "not_required"
	EscrowFundsHeld   EscrowStatus = "funds_held"
	EscrowReleased    EscrowStatus = "released"
	EscrowRefunded    EscrowStatus = "refunded"
)

func (s EscrowStatus) Valid() bool {
	switch s {
	case EscrowNotRequired, EscrowFundsHeld, EscrowReleased, EscrowRefunded:
		return true
	}
	return false
}

func (s EscrowStatus) CanTransitionTo(next EscrowStatus) bool {
	switch s {
	case EscrowNotRequired:
		return next == EscrowFundsHeld
	case EscrowFundsHeld:
		return next == EscrowReleased || next == EscrowRefunded
	case EscrowReleased, EscrowRefunded:
		return false
	}
	return false
}

// MilestoneStatus is the state of a milestone in the approval flow.
type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "pending"
	MilestoneSubmitted MilestoneStatus = "submitted"
	MilestoneApproved  MilestoneStatus = "approved"
	MilestoneReleased  MilestoneStatus = "released"
	MilestoneDisputed  MilestoneStatus = "disputed"
)

var MilestoneStatuses = []MilestoneStatus{MilestonePending, MilestoneSubmitted, MilestoneApproved, MilestoneReleased, MilestoneDisputed}

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneSubmitted, MilestoneApproved, MilestoneReleased, MilestoneDisputed:
		return true
	}
	return false
}

// CanTransitionTo encodes the moves the parties of a contract can make. An
// approval is paid out in the same commit, so approved is passed through on
// the way to released.
func (s MilestoneStatus) CanTransitionTo(next MilestoneStatus) bool {
	switch s {
	case MilestonePending:
		return next == MilestoneSubmitted
	case MilestoneSubmitted:
		return next == MilestoneApproved || next == MilestoneDisputed
	case MilestoneApproved:
		return next == MilestoneReleased || next == MilestoneDisputed
	case MilestoneDisputed, MilestoneReleased:
		return false
	}
	return false
}

// CanReset reports whether an admin can return the milestone to submitted.
func (s MilestoneStatus) CanReset() bool {
	return s == MilestoneDisputed
}

// Outstanding reports whether the milestone still has escrowed funds behind it.
func (s MilestoneStatus) Outstanding() bool {
	switch s {
	case MilestonePending, MilestoneSubmitted, MilestoneApproved, MilestoneDisputed:
		return true
	case MilestoneReleased:
		return false
	}
	return false
}
