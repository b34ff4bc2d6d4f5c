package wallet

import (
	"context"
	"errors"

	"agrifi-backend/internal/domain/ledger"

	"gorm.io/gorm"
)

// Move debits from and credits to within the caller's transaction, journaling
// a single entry. The destination account is created on first credit; an
// unknown source holds nothing and fails the funds check. A self-move still
// needs the funds and still journals, but nets to zero — the balance row is
// never touched through two copies.
func Move(ctx context.Context, r Repository, from, to string, amount int64, kind Kind, refID uint64) (*Entry, error) {
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	src, err := r.GetByAccountIDForUpdate(ctx, from)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrInsufficientFunds
		}
		return nil, err
	}
	if src.Balance < amount {
		return nil, ledger.ErrInsufficientFunds
	}
	if from != to {
		dst, err := r.GetByAccountIDForUpdate(ctx, to)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			dst = &Account{AccountID: to}
			if err := r.CreateAccount(ctx, dst); err != nil {
				return nil, err
			}
		}
		src.Balance -= amount
		dst.Balance += amount
		if err := r.SaveAccount(ctx, src); err != nil {
			return nil, err
		}
		if err := r.SaveAccount(ctx, dst); err != nil {
			return nil, err
		}
	}
	e := &Entry{From: from, To: to, Amount: amount, Kind: kind, RefID: refID}
	if err := r.CreateEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
