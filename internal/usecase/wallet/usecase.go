package wallet

import (
	"context"
	"errors"

	"agrifi-backend/internal/domain/ledger"
	"agrifi-backend/internal/domain/uow"
	domain "agrifi-backend/internal/domain/wallet"
	"agrifi-backend/pkg/id"

	"gorm.io/gorm"
)

type AccountDTO struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// Usecase covers the two external wallet operations: top-ups and balance
// reads. All other movements happen inside loan/agreement transactions.
type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repo: r, uow: tx}
}

// Deposit credits the caller's account, creating it on first use.
func (u *Usecase) Deposit(ctx context.Context, caller string, amount int64) (*AccountDTO, error) {
	if !id.Valid(caller) || id.IsZero(caller) {
		return nil, ledger.ErrInvalidAddress
	}
	if amount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	var dto *AccountDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Wallets.GetByAccountIDForUpdate(ctx, caller)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			a = &domain.Account{AccountID: caller}
			if err := r.Wallets.CreateAccount(ctx, a); err != nil {
				return err
			}
		}
		a.Balance += amount
		if err := r.Wallets.SaveAccount(ctx, a); err != nil {
			return err
		}
		e := &domain.Entry{To: caller, Amount: amount, Kind: domain.KindDeposit}
		if err := r.Wallets.CreateEntry(ctx, e); err != nil {
			return err
		}
		dto = &AccountDTO{AccountID: a.AccountID, Balance: a.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Balance(ctx context.Context, accountID string) (*AccountDTO, error) {
	a, err := u.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return &AccountDTO{AccountID: a.AccountID, Balance: a.Balance}, nil
}
