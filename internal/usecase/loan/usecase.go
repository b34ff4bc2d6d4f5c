package loan

import (
	"context"
	"errors"
	"log"
	"time"

	"agrifi-backend/internal/domain/event"
	"agrifi-backend/internal/domain/ledger"
	domain "agrifi-backend/internal/domain/loan"
	"agrifi-backend/internal/domain/uow"
	"agrifi-backend/internal/domain/wallet"
	"agrifi-backend/pkg/id"

	"gorm.io/gorm"
)

// Usecase implements the loan ledger state machine:
// requested → funded → {repaid | liquidated}.
type Usecase struct {
	repo      domain.Repository
	events    event.Repository
	uow       uow.UnitOfWork
	pub       event.Publisher
	custodyID string

	now func() time.Time
}

// NewUsecase wires the loan ledger. custodyID is the account that holds
// collateral tokens while a loan is live.
func NewUsecase(r domain.Repository, ev event.Repository, tx uow.UnitOfWork, pub event.Publisher, custodyID string) *Usecase {
	return &Usecase{repo: r, events: ev, uow: tx, pub: pub, custodyID: custodyID, now: time.Now}
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		ID:             l.ID,
		Borrower:       l.Borrower,
		Lender:         l.Lender,
		Principal:      l.Principal,
		Interest:       l.Interest,
		TokenID:        l.TokenID,
		Deadline:       l.Deadline,
		State:          string(l.State),
		StateUpdatedAt: l.StateUpdatedAt,
		CreatedAt:      l.CreatedAt,
	}
}

func (u *Usecase) publish(ctx context.Context, ev *event.Event) {
	if u.pub == nil || ev == nil {
		return
	}
	if err := u.pub.Publish(ctx, ev); err != nil {
		log.Printf("loan: event publish failed: %v", err)
	}
}

func notFoundAs(err, as error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return as
	}
	return err
}

// Request locks the caller's collateral token into custody and records a loan
// with the fixed 5% interest.
func (u *Usecase) Request(ctx context.Context, caller string, tokenID uint64, principal int64) (*LoanDTO, error) {
	if !id.Valid(caller) || id.IsZero(caller) {
		return nil, ledger.ErrInvalidAddress
	}
	if principal <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	var dto *LoanDTO
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Tokens.GetByIDForUpdate(ctx, tokenID)
		if err != nil {
			return notFoundAs(err, ledger.ErrUnauthorized)
		}
		if !t.ControlledBy(caller) {
			return ledger.ErrUnauthorized
		}
		t.Owner = u.custodyID
		t.Approved = ""
		if err := r.Tokens.Save(ctx, t); err != nil {
			return err
		}
		l := &domain.Loan{
			Borrower:       caller,
			Principal:      principal,
			Interest:       domain.InterestFor(principal),
			TokenID:        tokenID,
			State:          domain.StateRequested,
			StateUpdatedAt: u.now().UTC(),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		ev = event.New(event.LedgerLoan, "loan.requested", l.ID, caller, map[string]any{
			"borrower":  caller,
			"token_id":  tokenID,
			"principal": principal,
			"interest":  l.Interest,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, ev)
	return dto, nil
}

// Fund records the lender and forwards the principal to the borrower. The
// paid amount must equal the principal exactly; the repayment deadline starts
// counting from here.
func (u *Usecase) Fund(ctx context.Context, caller string, loanID uint64, amount int64) (*LoanDTO, error) {
	if !id.Valid(caller) || id.IsZero(caller) {
		return nil, ledger.ErrInvalidAddress
	}
	var dto *LoanDTO
	var ev *event.Event
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.State != domain.StateRequested {
			return ledger.ErrInvalidState
		}
		if amount != l.Principal {
			return ledger.ErrInvalidAmount
		}
		if _, err := wallet.Move(ctx, r.Wallets, caller, l.Borrower, amount, wallet.KindLoanFunding, l.ID); err != nil {
			return err
		}
		deadline := u.now().UTC().Add(domain.Duration)
		l.Lender = caller
		l.Deadline = &deadline
		l.State = domain.StateFunded
		l.StateUpdatedAt = u.now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		ev = event.New(event.LedgerLoan, "loan.funded", l.ID, caller, map[string]any{
			"lender":   caller,
			"amount":   amount,
			"deadline": deadline,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// Repay settles a funded loan before its deadline: principal+interest moves
// to the lender and the collateral returns to the borrower.
func (u *Usecase) Repay(ctx context.Context, caller string, loanID uint64, amount int64) (*LoanDTO, error) {
	var dto *LoanDTO
	var ev *event.Event
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if caller != l.Borrower {
			return ledger.ErrUnauthorized
		}
		if l.State != domain.StateFunded {
			return ledger.ErrInvalidState
		}
		if !u.now().Before(*l.Deadline) {
			return ledger.ErrExpired
		}
		if amount != l.Principal+l.Interest {
			return ledger.ErrInvalidAmount
		}
		if _, err := wallet.Move(ctx, r.Wallets, l.Borrower, l.Lender, amount, wallet.KindRepayment, l.ID); err != nil {
			return err
		}
		if err := u.releaseCollateral(ctx, r, l.TokenID, l.Borrower); err != nil {
			return err
		}
		l.State = domain.StateRepaid
		l.StateUpdatedAt = u.now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		ev = event.New(event.LedgerLoan, "loan.repaid", l.ID, caller, map[string]any{
			"amount": amount,
			"lender": l.Lender,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// Liquidate lets the lender seize the collateral once the deadline has passed
// without repayment.
func (u *Usecase) Liquidate(ctx context.Context, caller string, loanID uint64) (*LoanDTO, error) {
	var dto *LoanDTO
	var ev *event.Event
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if caller != l.Lender {
			return ledger.ErrUnauthorized
		}
		if l.State != domain.StateFunded {
			return ledger.ErrInvalidState
		}
		if u.now().Before(*l.Deadline) {
			return ledger.ErrNotYetExpired
		}
		if err := u.releaseCollateral(ctx, r, l.TokenID, l.Lender); err != nil {
			return err
		}
		l.State = domain.StateLiquidated
		l.StateUpdatedAt = u.now().UTC()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		ev = event.New(event.LedgerLoan, "loan.liquidated", l.ID, caller, map[string]any{
			"lender":   caller,
			"token_id": l.TokenID,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// releaseCollateral hands the custody-held token to its terminal recipient.
func (u *Usecase) releaseCollateral(ctx context.Context, r uow.Repos, tokenID uint64, to string) error {
	t, err := r.Tokens.GetByIDForUpdate(ctx, tokenID)
	if err != nil {
		return err
	}
	t.Owner = to
	t.Approved = ""
	return r.Tokens.Save(ctx, t)
}

func (u *Usecase) Get(ctx context.Context, loanID uint64) (*LoanDTO, error) {
	l, err := u.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	return toDTO(l), nil
}

func (u *Usecase) ListByBorrower(ctx context.Context, borrower string) ([]LoanDTO, error) {
	ls, err := u.repo.ListByBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out, nil
}

func (u *Usecase) Events(ctx context.Context, loanID uint64) ([]event.Event, error) {
	return u.events.ListByRef(ctx, event.LedgerLoan, loanID)
}
