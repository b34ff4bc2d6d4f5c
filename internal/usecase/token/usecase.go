package token

import (
	"context"
	"errors"
	"log"

	"agrifi-backend/internal/domain/event"
	"agrifi-backend/internal/domain/ledger"
	domain "agrifi-backend/internal/domain/token"
	"agrifi-backend/internal/domain/uow"
	"agrifi-backend/pkg/id"

	"gorm.io/gorm"
)

// Usecase implements the collateral token registry: mint, burn, approve and
// transfer, each recorded as an event in the same transaction.
type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
	pub  event.Publisher
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork, pub event.Publisher) *Usecase {
	return &Usecase{repo: r, uow: tx, pub: pub}
}

func toDTO(t *domain.Token) *TokenDTO {
	return &TokenDTO{ID: t.ID, Owner: t.Owner, Approved: t.Approved, URI: t.URI, CreatedAt: t.CreatedAt}
}

func (u *Usecase) publish(ctx context.Context, ev *event.Event) {
	if u.pub == nil || ev == nil {
		return
	}
	if err := u.pub.Publish(ctx, ev); err != nil {
		log.Printf("token: event publish failed: %v", err)
	}
}

// Mint creates a token owned by the caller. Any identity may mint.
func (u *Usecase) Mint(ctx context.Context, caller, uri string) (*TokenDTO, error) {
	if !id.Valid(caller) || id.IsZero(caller) {
		return nil, ledger.ErrInvalidAddress
	}
	var dto *TokenDTO
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t := &domain.Token{Owner: caller, URI: uri}
		if err := r.Tokens.Create(ctx, t); err != nil {
			return err
		}
		ev = event.New(event.LedgerToken, "token.minted", t.ID, caller, map[string]any{
			"owner": caller,
			"uri":   uri,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, ev)
	return dto, nil
}

// Burn destroys a token. Only the current owner may burn; a nonexistent id
// has no owner, so it fails the same way.
func (u *Usecase) Burn(ctx context.Context, caller string, tokenID uint64) error {
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Tokens.GetByIDForUpdate(ctx, tokenID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ledger.ErrUnauthorized
			}
			return err
		}
		if t.Owner != caller {
			return ledger.ErrUnauthorized
		}
		t.Owner = ""
		t.Approved = ""
		t.URI = ""
		if err := r.Tokens.Save(ctx, t); err != nil {
			return err
		}
		if err := r.Tokens.Delete(ctx, t); err != nil {
			return err
		}
		ev = event.New(event.LedgerToken, "token.burned", t.ID, caller, nil)
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return err
	}
	u.publish(ctx, ev)
	return nil
}

// Approve designates a single operator allowed to move the token. Passing the
// zero identity clears the approval.
func (u *Usecase) Approve(ctx context.Context, caller string, tokenID uint64, spender string) error {
	if !id.Valid(spender) {
		return ledger.ErrInvalidAddress
	}
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Tokens.GetByIDForUpdate(ctx, tokenID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ledger.ErrUnauthorized
			}
			return err
		}
		if t.Owner != caller {
			return ledger.ErrUnauthorized
		}
		if id.IsZero(spender) {
			t.Approved = ""
		} else {
			t.Approved = spender
		}
		if err := r.Tokens.Save(ctx, t); err != nil {
			return err
		}
		ev = event.New(event.LedgerToken, "token.approved", t.ID, caller, map[string]any{
			"spender": t.Approved,
		})
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return err
	}
	u.publish(ctx, ev)
	return nil
}

// Transfer moves ownership. The caller must be the owner or the approved
// operator; any approval is consumed by the move.
func (u *Usecase) Transfer(ctx context.Context, caller string, tokenID uint64, to string) error {
	if !id.Valid(to) || id.IsZero(to) {
		return ledger.ErrInvalidAddress
	}
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Tokens.GetByIDForUpdate(ctx, tokenID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ledger.ErrUnauthorized
			}
			return err
		}
		if !t.ControlledBy(caller) {
			return ledger.ErrUnauthorized
		}
		from := t.Owner
		t.Owner = to
		t.Approved = ""
		if err := r.Tokens.Save(ctx, t); err != nil {
			return err
		}
		ev = event.New(event.LedgerToken, "token.transferred", t.ID, caller, map[string]any{
			"from": from,
			"to":   to,
		})
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return err
	}
	u.publish(ctx, ev)
	return nil
}

func (u *Usecase) ListByOwner(ctx context.Context, owner string) ([]TokenDTO, error) {
	ts, err := u.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]TokenDTO, 0, len(ts))
	for i := range ts {
		out = append(out, *toDTO(&ts[i]))
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, tokenID uint64) (*TokenDTO, error) {
	t, err := u.repo.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, err
	}
	return toDTO(t), nil
}
