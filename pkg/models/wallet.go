package models

import (
	"fmt"
	"time"
)

// HeldTotal is the sum of all holds on the wallet.
func (w *Wallet) HeldTotal() int64 {
	var total int64
	for _, h := range w.Holds {
		total += h.Amount
	}
	return total
}

// FindHold returns the hold placed for relatedID.
func (w *Wallet) FindHold(relatedID string) (Hold, bool) {
	for _, h := range w.Holds {
		if h.RelatedId == relatedID {
			return h, true
		}
	}
	return Hold{}, false
}

// PlaceHold moves amount from the balance into a new hold.
func (w *Wallet) PlaceHold(amount int64, reason, relatedID string, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: hold amount must be positive", ErrValidation)
	}
	if relatedID == "" {
		return fmt.Errorf("%w: hold requires a related id", ErrValidation)
	}
	if _, ok := w.FindHold(relatedID); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyHeld, relatedID)
	}
	if w.Balance < amount {
		return fmt.Errorf("%w: balance %d, requested %d", ErrInsufficientFunds, w.Balance, amount)
	}
	w.Balance -= amount
	w.Holds = append(w.Holds, Hold{Amount: amount, Reason: reason, RelatedId: relatedID, CreatedAt: now})
	return nil
}

// ReduceHold takes amount out of the hold for relatedID, removing the hold once
// it reaches zero. The balance is left untouched.
func (w *Wallet) ReduceHold(relatedID string, amount int64) (Hold, error) {
	if amount <= 0 {
		return Hold{}, fmt.Errorf("%w: release amount must be positive", ErrValidation)
	}
	for i, h := range w.Holds {
		if h.RelatedId != relatedID {
			continue
		}
		if h.Amount < amount {
			return Hold{}, fmt.Errorf("%w: hold %s has %d, requested %d", ErrInsufficientFunds, relatedID, h.Amount, amount)
		}
		taken := h
		taken.Amount = amount
		if h.Amount == amount {
			w.Holds = append(w.Holds[:i:i], w.Holds[i+1:]...)
		} else {
			w.Holds[i].Amount -= amount
		}
		return taken, nil
	}
	return Hold{}, fmt.Errorf("%w: no hold for %s", ErrNotFound, relatedID)
}

// SplitHold carves amount out of the hold for fromID into a new hold keyed by toID.
func (w *Wallet) SplitHold(fromID, toID string, amount int64, reason string, now time.Time) error {
	if _, ok := w.FindHold(toID); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyHeld, toID)
	}
	if _, err := w.ReduceHold(fromID, amount); err != nil {
		return err
	}
	w.Holds = append(w.Holds, Hold{Amount: amount, Reason: reason, RelatedId: toID, CreatedAt: now})
	return nil
}

// Clone returns a deep copy of the wallet.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.Holds = append([]Hold(nil), w.Holds...)
	return &c
}

// Effect is the change a settled transaction makes to its wallet's available
// balance and held total. Debits, refunds and payouts that reference a hold
// move money between the two.
func (t *Transaction) Effect() (available, held int64) {
	if !t.Status.Settled() {
		return 0, 0
	}
	a := t.Amount
	switch t.Type {
	case TransactionCredit:
		return a, 0
	case TransactionFee:
		return -a, 0
	case TransactionDebit:
		if t.HoldRef != "" {
			return -a, a
		}
		return -a, 0
	case TransactionRefund:
		if t.HoldRef != "" {
			return a, -a
		}
		return a, 0
	case TransactionPayout:
		if t.HoldRef != "" {
			return 0, -a
		}
		return -a, 0
	}
	return 0, 0
}

func (c *Contract) Clone() *Contract {
	cc := *c
	cc.MilestoneIds = append([]string(nil), c.MilestoneIds...)
	return &cc
}

func (m *Milestone) Clone() *Milestone {
	mc := *m
	mc.Deliverables = append([]string(nil), m.Deliverables...)
	return &mc
}
