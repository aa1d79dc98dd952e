package models

import "errors"

// Errors returned by the wallet, ledger, escrow and payment services. Callers
// match them with errors.Is; the services wrap them with context.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAlreadyHeld         = errors.New("funds already held for this reference")
	ErrInvalidState        = errors.New("invalid state")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrGateway             = errors.New("payment gateway error")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrWalletFrozen        = errors.New("wallet is frozen")
	ErrInvariantViolation  = errors.New("ledger invariant violated")
)
