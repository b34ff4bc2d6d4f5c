package uowmock

import (
	"context"
	"errors"

	"agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/loan"
	"agrifi-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork. Fill in the
// function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn          func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn      func(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error
	WithinAgreementTxFn func(ctx context.Context, agreementID uint64, fn func(r uow.Repos, a *agreement.Agreement) error) error
}

func New() *UoW { return &UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinLoanTx(ctx context.Context, loanID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinAgreementTx(ctx context.Context, agreementID uint64, fn func(r uow.Repos, a *agreement.Agreement) error) error {
	if m.WithinAgreementTxFn != nil {
		return m.WithinAgreementTxFn(ctx, agreementID, fn)
	}
	return errUnimplemented
}
