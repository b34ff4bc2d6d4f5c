package mysql

import (
	"context"
	"testing"
	"time"

	agreementDomain "agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/testutil/testdb"
	"agrifi-backend/pkg/id"
)

func TestAgreementRepository_CreateGetSave(t *testing.T) {
	repo := NewAgreementRepository(testdb.Open(t))
	ctx := context.Background()
	farmer := id.NewID32()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	a := &agreementDomain.Agreement{
		Farmer:           farmer,
		TokenID:          1,
		InvestAmount:     2_000_000,
		InvestorShareBps: 3000,
		ExpectedQuantity: 1000,
		Option:           agreementDomain.OptionUnset,
		HarvestDeadline:  now.Add(60 * 24 * time.Hour),
		DeliveryDeadline: now.Add(90 * 24 * time.Hour),
		Status:           agreementDomain.StatusProposed,
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID != 1 {
		t.Fatalf("agreement id = %d, want 1", a.ID)
	}

	got, err := repo.GetByIDForUpdate(ctx, a.ID)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}
	if got.Status != agreementDomain.StatusProposed || got.Option != agreementDomain.OptionUnset {
		t.Fatalf("status = %q, option = %q", got.Status, got.Option)
	}

	got.Investor = id.NewID32()
	got.Option = agreementDomain.OptionShareProfits
	got.Status = agreementDomain.StatusFunded
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Status != agreementDomain.StatusFunded || again.Option != agreementDomain.OptionShareProfits {
		t.Fatalf("after save: status = %q, option = %q", again.Status, again.Option)
	}

	ls, err := repo.ListByFarmer(ctx, farmer)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ls) != 1 || ls[0].ID != a.ID {
		t.Fatalf("list by farmer = %+v", ls)
	}
}

func TestAgreementRepository_EnsureSettings(t *testing.T) {
	repo := NewAgreementRepository(testdb.Open(t))
	ctx := context.Background()
	owner, oracle := id.NewID32(), id.NewID32()

	s, err := repo.EnsureSettings(ctx, owner, oracle)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if s.Owner != owner || s.Oracle != oracle {
		t.Fatalf("settings = %+v", s)
	}

	// a second ensure keeps the existing row even with different arguments
	s2, err := repo.EnsureSettings(ctx, id.NewID32(), id.NewID32())
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if s2.ID != s.ID || s2.Owner != owner || s2.Oracle != oracle {
		t.Fatalf("second ensure replaced settings: %+v", s2)
	}

	s2.Oracle = id.NewID32()
	if err := repo.SaveSettings(ctx, s2); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got.Oracle != s2.Oracle {
		t.Fatalf("oracle = %q, want %q", got.Oracle, s2.Oracle)
	}
}
