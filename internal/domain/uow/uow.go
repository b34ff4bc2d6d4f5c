package uow

import (
	"context"

	"agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/event"
	"agrifi-backend/internal/domain/loan"
	"agrifi-backend/internal/domain/token"
	"agrifi-backend/internal/domain/wallet"
)

type Repos struct {
	Tokens     token.Repository
	Loans      loan.Repository
	Agreements agreement.Repository
	Wallets    wallet.Repository
	Events     event.Repository
}

// UnitOfWork runs fn atomically: every mutation inside commits together or
// not at all, mirroring the all-or-nothing call semantics of the ledgers.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the record first, then pass it in
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
	WithinAgreementTx(ctx context.Context, agreementID uint64, fn func(r Repos, a *agreement.Agreement) error) error
}
