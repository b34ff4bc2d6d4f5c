package agreement

import (
	"context"
	"errors"
	"log"
	"time"

	domain "agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/event"
	"agrifi-backend/internal/domain/ledger"
	"agrifi-backend/internal/domain/uow"
	"agrifi-backend/internal/domain/wallet"
	"agrifi-backend/pkg/id"

	"gorm.io/gorm"
)

// Usecase implements the investment agreement ledger:
// proposed → funded → produce_ready → settled, with defaulted reachable from
// funded/produce_ready once the relevant deadline elapses.
type Usecase struct {
	repo      domain.Repository
	events    event.Repository
	uow       uow.UnitOfWork
	pub       event.Publisher
	custodyID string

	now func() time.Time
}

func NewUsecase(r domain.Repository, ev event.Repository, tx uow.UnitOfWork, pub event.Publisher, custodyID string) *Usecase {
	return &Usecase{repo: r, events: ev, uow: tx, pub: pub, custodyID: custodyID, now: time.Now}
}

func toDTO(a *domain.Agreement) *AgreementDTO {
	return &AgreementDTO{
		ID:               a.ID,
		Farmer:           a.Farmer,
		Investor:         a.Investor,
		TokenID:          a.TokenID,
		InvestAmount:     a.InvestAmount,
		InvestorShareBps: a.InvestorShareBps,
		ExpectedQuantity: a.ExpectedQuantity,
		Option:           string(a.Option),
		HarvestDeadline:  a.HarvestDeadline,
		DeliveryDeadline: a.DeliveryDeadline,
		SaleAmount:       a.SaleAmount,
		Status:           string(a.Status),
		StatusUpdatedAt:  a.StatusUpdatedAt,
		CreatedAt:        a.CreatedAt,
	}
}

func (u *Usecase) publish(ctx context.Context, ev *event.Event) {
	if u.pub == nil || ev == nil {
		return
	}
	if err := u.pub.Publish(ctx, ev); err != nil {
		log.Printf("agreement: event publish failed: %v", err)
	}
}

func notFoundAs(err, as error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return as
	}
	return err
}

// Propose locks the farmer's collateral token into custody and records a new
// agreement with the fulfilment option left unset.
func (u *Usecase) Propose(ctx context.Context, caller string, in ProposeInput) (*AgreementDTO, error) {
	if !id.Valid(caller) || id.IsZero(caller) {
		return nil, ledger.ErrInvalidAddress
	}
	if in.InvestAmount <= 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if in.InvestorShareBps > domain.MaxShareBps {
		return nil, ledger.ErrInvalidShare
	}
	var dto *AgreementDTO
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Tokens.GetByIDForUpdate(ctx, in.TokenID)
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
		a := &domain.Agreement{
			Farmer:           caller,
			TokenID:          in.TokenID,
			InvestAmount:     in.InvestAmount,
			InvestorShareBps: in.InvestorShareBps,
			ExpectedQuantity: in.ExpectedQuantity,
			Option:           domain.OptionUnset,
			HarvestDeadline:  in.HarvestDeadline.UTC(),
			DeliveryDeadline: in.DeliveryDeadline.UTC(),
			Status:           domain.StatusProposed,
			StatusUpdatedAt:  u.now().UTC(),
		}
		if err := r.Agreements.Create(ctx, a); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.proposed", a.ID, caller, map[string]any{
			"farmer":             caller,
			"token_id":           in.TokenID,
			"invest_amount":      in.InvestAmount,
			"investor_share_bps": in.InvestorShareBps,
			"expected_quantity":  in.ExpectedQuantity,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, ev)
	return dto, nil
}

// Fund fixes the investor, the fulfilment option and the funded status, and
// forwards the investment to the farmer. The paid amount must equal the
// proposed investment exactly.
func (u *Usecase) Fund(ctx context.Context, caller string, agreementID uint64, option domain.Option, amount int64) (*AgreementDTO, error) {
	if !id.Valid(caller) || id.IsZero(caller) {
		return nil, ledger.ErrInvalidAddress
	}
	var dto *AgreementDTO
	var ev *event.Event
	err := u.uow.WithinAgreementTx(ctx, agreementID, func(r uow.Repos, a *domain.Agreement) error {
		if a.Status != domain.StatusProposed {
			return ledger.ErrInvalidState
		}
		if !option.Valid() {
			return ledger.ErrInvalidOption
		}
		if amount != a.InvestAmount {
			return ledger.ErrInvalidAmount
		}
		if _, err := wallet.Move(ctx, r.Wallets, caller, a.Farmer, amount, wallet.KindInvestment, a.ID); err != nil {
			return err
		}
		a.Investor = caller
		a.Option = option
		a.Status = domain.StatusFunded
		a.StatusUpdatedAt = u.now().UTC()
		if err := r.Agreements.Save(ctx, a); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.funded", a.ID, caller, map[string]any{
			"investor": caller,
			"option":   string(option),
			"amount":   amount,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// MarkHarvestReady advances a funded agreement once the farmer declares the
// produce ready for delivery or sale.
func (u *Usecase) MarkHarvestReady(ctx context.Context, caller string, agreementID uint64) (*AgreementDTO, error) {
	var dto *AgreementDTO
	var ev *event.Event
	err := u.uow.WithinAgreementTx(ctx, agreementID, func(r uow.Repos, a *domain.Agreement) error {
		if caller != a.Farmer {
			return ledger.ErrUnauthorized
		}
		if a.Status != domain.StatusFunded {
			return ledger.ErrInvalidState
		}
		a.Status = domain.StatusProduceReady
		a.StatusUpdatedAt = u.now().UTC()
		if err := r.Agreements.Save(ctx, a); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.harvest_ready", a.ID, caller, nil)
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// ConfirmDelivery settles a deliver-produce agreement. The investor, or the
// configured oracle on their behalf, confirms receipt; the collateral returns
// to the farmer since the goods change hands off-ledger.
func (u *Usecase) ConfirmDelivery(ctx context.Context, caller string, agreementID uint64) (*AgreementDTO, error) {
	var dto *AgreementDTO
	var ev *event.Event
	err := u.uow.WithinAgreementTx(ctx, agreementID, func(r uow.Repos, a *domain.Agreement) error {
		if a.Status != domain.StatusProduceReady {
			return ledger.ErrInvalidState
		}
		if a.Option != domain.OptionDeliverProduce {
			return ledger.ErrInvalidOption
		}
		s, err := r.Agreements.GetSettings(ctx)
		if err != nil {
			return err
		}
		if caller != a.Investor && caller != s.Oracle {
			return ledger.ErrUnauthorized
		}
		if err := u.releaseCollateral(ctx, r, a.TokenID, a.Farmer); err != nil {
			return err
		}
		a.Status = domain.StatusSettled
		a.StatusUpdatedAt = u.now().UTC()
		if err := r.Agreements.Save(ctx, a); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.settled", a.ID, caller, map[string]any{
			"path": "delivery",
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// ReportSale settles a share-profits agreement: the farmer reports the sale
// and the investor's share (saleAmount × shareBps / 10000) is forwarded to
// them; the remainder stays with the farmer.
func (u *Usecase) ReportSale(ctx context.Context, caller string, agreementID uint64, saleAmount int64) (*AgreementDTO, error) {
	var dto *AgreementDTO
	var ev *event.Event
	err := u.uow.WithinAgreementTx(ctx, agreementID, func(r uow.Repos, a *domain.Agreement) error {
		if caller != a.Farmer {
			return ledger.ErrUnauthorized
		}
		if a.Status != domain.StatusProduceReady {
			return ledger.ErrInvalidState
		}
		if a.Option != domain.OptionShareProfits {
			return ledger.ErrInvalidOption
		}
		if saleAmount <= 0 {
			return ledger.ErrInvalidAmount
		}
		payout := domain.PayoutFor(saleAmount, a.InvestorShareBps)
		if payout > 0 {
			if _, err := wallet.Move(ctx, r.Wallets, a.Farmer, a.Investor, payout, wallet.KindProfitShare, a.ID); err != nil {
				return err
			}
		}
		if err := u.releaseCollateral(ctx, r, a.TokenID, a.Farmer); err != nil {
			return err
		}
		a.SaleAmount = saleAmount
		a.Status = domain.StatusSettled
		a.StatusUpdatedAt = u.now().UTC()
		if err := r.Agreements.Save(ctx, a); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.settled", a.ID, caller, map[string]any{
			"path":        "sale",
			"sale_amount": saleAmount,
			"payout":      payout,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// ClaimCollateral lets the investor seize the collateral when the farmer
// missed the relevant deadline: the harvest deadline while funded, the
// delivery deadline once produce was marked ready.
func (u *Usecase) ClaimCollateral(ctx context.Context, caller string, agreementID uint64) (*AgreementDTO, error) {
	var dto *AgreementDTO
	var ev *event.Event
	err := u.uow.WithinAgreementTx(ctx, agreementID, func(r uow.Repos, a *domain.Agreement) error {
		var deadline time.Time
		switch a.Status {
		case domain.StatusFunded:
			deadline = a.HarvestDeadline
		case domain.StatusProduceReady:
			deadline = a.DeliveryDeadline
		default:
			return ledger.ErrInvalidState
		}
		if caller != a.Investor {
			return ledger.ErrUnauthorized
		}
		if u.now().Before(deadline) {
			return ledger.ErrNotYetExpired
		}
		if err := u.releaseCollateral(ctx, r, a.TokenID, a.Investor); err != nil {
			return err
		}
		a.Status = domain.StatusDefaulted
		a.StatusUpdatedAt = u.now().UTC()
		if err := r.Agreements.Save(ctx, a); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.defaulted", a.ID, caller, map[string]any{
			"token_id": a.TokenID,
		})
		if err := r.Events.Append(ctx, ev); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	u.publish(ctx, ev)
	return dto, nil
}

// SetOracle updates the delivery oracle. Owner-only; the zero identity is
// rejected so delivery confirmation can never be locked out.
func (u *Usecase) SetOracle(ctx context.Context, caller, oracle string) error {
	var ev *event.Event
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Agreements.GetSettings(ctx)
		if err != nil {
			return err
		}
		if caller != s.Owner {
			return ledger.ErrUnauthorized
		}
		if !id.Valid(oracle) || id.IsZero(oracle) {
			return ledger.ErrInvalidAddress
		}
		s.Oracle = oracle
		if err := r.Agreements.SaveSettings(ctx, s); err != nil {
			return err
		}
		ev = event.New(event.LedgerAgreement, "agreement.oracle_updated", 0, caller, map[string]any{
			"oracle": oracle,
		})
		return r.Events.Append(ctx, ev)
	})
	if err != nil {
		return err
	}
	u.publish(ctx, ev)
	return nil
}

func (u *Usecase) releaseCollateral(ctx context.Context, r uow.Repos, tokenID uint64, to string) error {
	t, err := r.Tokens.GetByIDForUpdate(ctx, tokenID)
	if err != nil {
		return err
	}
	t.Owner = to
	t.Approved = ""
	return r.Tokens.Save(ctx, t)
}

func (u *Usecase) Get(ctx context.Context, agreementID uint64) (*AgreementDTO, error) {
	a, err := u.repo.GetByID(ctx, agreementID)
	if err != nil {
		return nil, notFoundAs(err, ledger.ErrNotFound)
	}
	return toDTO(a), nil
}

func (u *Usecase) ListByFarmer(ctx context.Context, farmer string) ([]AgreementDTO, error) {
	as, err := u.repo.ListByFarmer(ctx, farmer)
	if err != nil {
		return nil, err
	}
	out := make([]AgreementDTO, 0, len(as))
	for i := range as {
		out = append(out, *toDTO(&as[i]))
	}
	return out, nil
}

func (u *Usecase) Events(ctx context.Context, agreementID uint64) ([]event.Event, error) {
	return u.events.ListByRef(ctx, event.LedgerAgreement, agreementID)
}
