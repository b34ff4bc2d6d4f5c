package mysql

import (
	"context"

	"agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/loan"
	"agrifi-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Tokens:     &TokenRepository{db: tx},
		Loans:      &LoanRepository{db: tx},
		Agreements: &AgreementRepository{db: tx},
		Wallets:    &WalletRepository{db: tx},
		Events:     &EventRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

func (u *GormUoW) WithinAgreementTx(ctx context.Context, agreementID uint64, fn func(r uow.Repos, a *agreement.Agreement) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		a, err := r.Agreements.GetByIDForUpdate(ctx, agreementID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
