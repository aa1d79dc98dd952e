package wallet

import (
	"fmt"

	"github.com/chris/escrow-wallet/pkg/models"
	"github.com/chris/escrow-wallet/pkg/storage"
	"github.com/google/uuid"
)

type destinationKind int

const (
	destinationSame destinationKind = iota
	destinationOther
	destinationExternal
)

// Destination says where released hold funds go.
type Destination struct {
	kind   destinationKind
	userID string
}

// SameWallet cancels the hold and returns the funds to the holder's balance.
func SameWallet() Destination { return Destination{kind: destinationSame} }

// OtherWallet pays the held funds out to userID's wallet.
func OtherWallet(userID string) Destination { return Destination{kind: destinationOther, userID: userID} }

// External pays the held funds out of the platform, e.g. back to the card they came from.
func External() Destination { return Destination{kind: destinationExternal} }

// UserID is the receiving user of an OtherWallet destination.
func (d Destination) UserID() string { return d.userID }

// IsOtherWallet reports whether the funds go to another user's wallet.
func (d Destination) IsOtherWallet() bool { return d.kind == destinationOther }

// The Stage helpers mutate loaded wallets and add the matching writes to a
// unit of work without committing it. Callers commit once all entities of an
// operation are staged.

// StageCredit adds amount to w.
func (s *Service) StageCredit(uow *storage.UnitOfWork, w *models.Wallet, amount int64, meta models.TxMeta) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, fmt.Errorf("%w: credit amount must be positive", models.ErrValidation)
	}
	w.Balance += amount
	tx := s.newTransaction(uow, w, amount, models.TransactionCredit, "", meta)
	uow.PutWallet(w)
	uow.AddTransaction(tx)
	return tx, nil
}

// StageDebit takes amount from w.
func (s *Service) StageDebit(uow *storage.UnitOfWork, w *models.Wallet, amount int64, meta models.TxMeta) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, fmt.Errorf("%w: debit amount must be positive", models.ErrValidation)
	}
	if w.Balance < amount {
		return models.Transaction{}, fmt.Errorf("wallet for user ID %s: %w", w.UserId, models.ErrInsufficientFunds)
	}
	w.Balance -= amount
	tx := s.newTransaction(uow, w, amount, models.TransactionDebit, "", meta)
	uow.PutWallet(w)
	uow.AddTransaction(tx)
	return tx, nil
}

// StagePlaceHold moves amount from w's balance into a hold keyed by relatedID.
func (s *Service) StagePlaceHold(uow *storage.UnitOfWork, w *models.Wallet, amount int64, reason, relatedID string, meta models.TxMeta) (models.Transaction, error) {
	if err := w.PlaceHold(amount, reason, relatedID, uow.Now); err != nil {
		return models.Transaction{}, fmt.Errorf("wallet for user ID %s: %w", w.UserId, err)
	}
	if meta.Reason == "" {
		meta.Reason = reason
	}
	tx := s.newTransaction(uow, w, amount, models.TransactionDebit, relatedID, meta)
	uow.PutWallet(w)
	uow.AddTransaction(tx)
	return tx, nil
}

// StageReleaseHold releases the whole hold keyed by relatedID to dest. target
// must be the loaded wallet of dest's user when dest is OtherWallet.
func (s *Service) StageReleaseHold(uow *storage.UnitOfWork, holder *models.Wallet, relatedID string, dest Destination, target *models.Wallet, meta models.TxMeta) ([]models.Transaction, error) {
	hold, ok := holder.FindHold(relatedID)
	if !ok {
		return nil, fmt.Errorf("wallet for user ID %s has no hold for %s: %w", holder.UserId, relatedID, models.ErrNotFound)
	}
	return s.StageReleasePartial(uow, holder, relatedID, hold.Amount, dest, target, meta)
}

// StageReleasePartial releases amount out of the hold keyed by relatedID to dest.
func (s *Service) StageReleasePartial(uow *storage.UnitOfWork, holder *models.Wallet, relatedID string, amount int64, dest Destination, target *models.Wallet, meta models.TxMeta) ([]models.Transaction, error) {
	if dest.kind == destinationOther {
		if target == nil || target.UserId != dest.userID {
			return nil, fmt.Errorf("%w: release target wallet does not match destination", models.ErrValidation)
		}
		if target.UserId == holder.UserId {
			return nil, fmt.Errorf("%w: use SameWallet to return funds to the holder", models.ErrValidation)
		}
		if target.Currency != holder.Currency {
			return nil, fmt.Errorf("%w: currency mismatch %s/%s", models.ErrValidation, holder.Currency, target.Currency)
		}
	}

	if _, err := holder.ReduceHold(relatedID, amount); err != nil {
		return nil, fmt.Errorf("wallet for user ID %s: %w", holder.UserId, err)
	}
	uow.PutWallet(holder)

	switch dest.kind {
	case destinationSame:
		holder.Balance += amount
		tx := s.newTransaction(uow, holder, amount, models.TransactionRefund, relatedID, meta)
		uow.AddTransaction(tx)
		return []models.Transaction{tx}, nil

	case destinationOther:
		payout := s.newTransaction(uow, holder, amount, models.TransactionPayout, relatedID, meta)
		uow.AddTransaction(payout)
		credit, err := s.StageCredit(uow, target, amount, meta)
		if err != nil {
			return nil, err
		}
		return []models.Transaction{payout, credit}, nil

	case destinationExternal:
		payout := s.newTransaction(uow, holder, amount, models.TransactionPayout, relatedID, meta)
		uow.AddTransaction(payout)
		return []models.Transaction{payout}, nil
	}
	return nil, fmt.Errorf("%w: unknown release destination", models.ErrValidation)
}

// StageSettle applies the balance effect of an already recorded initiated
// transaction and moves it to succeeded.
func (s *Service) StageSettle(uow *storage.UnitOfWork, w *models.Wallet, tx *models.Transaction) error {
	if tx.WalletId != w.Id {
		return fmt.Errorf("%w: transaction %s belongs to another wallet", models.ErrValidation, tx.Id)
	}
	if !tx.Status.CanTransitionTo(models.TransactionSucceeded) {
		return fmt.Errorf("transaction %s is %s: %w", tx.Id, tx.Status, models.ErrInvalidTransition)
	}
	switch tx.Type {
	case models.TransactionCredit, models.TransactionRefund:
		w.Balance += tx.Amount
	case models.TransactionDebit, models.TransactionFee, models.TransactionPayout:
		if w.Balance < tx.Amount {
			return fmt.Errorf("wallet for user ID %s: %w", w.UserId, models.ErrInsufficientFunds)
		}
		w.Balance -= tx.Amount
	}
	uow.PutWallet(w)
	uow.ChangeStatus(tx.Id, tx.Status, models.TransactionSucceeded)
	return nil
}

func (s *Service) newTransaction(uow *storage.UnitOfWork, w *models.Wallet, amount int64, typ models.TransactionType, holdRef string, meta models.TxMeta) models.Transaction {
	provider := meta.Provider
	if provider == "" {
		provider = models.ProviderInternal
	}
	return models.Transaction{
		Id:                uuid.New().String(),
		WalletId:          w.Id,
		UserId:            w.UserId,
		Amount:            amount,
		Currency:          w.Currency,
		Type:              typ,
		Reason:            meta.Reason,
		Provider:          provider,
		ProviderPaymentId: meta.ProviderPaymentId,
		RelatedContract:   meta.RelatedContract,
		RelatedMilestone:  meta.RelatedMilestone,
		HoldRef:           holdRef,
		Status:            models.TransactionSucceeded,
		CreatedAt:         uow.Now,
		UpdatedAt:         uow.Now,
	}
}
