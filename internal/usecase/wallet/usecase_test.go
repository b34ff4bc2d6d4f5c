package wallet

import (
	"context"
	"errors"
	"testing"

	"agrifi-backend/internal/adapter/repository/mysql"
	"agrifi-backend/internal/domain/ledger"
	domain "agrifi-backend/internal/domain/wallet"
	"agrifi-backend/internal/testutil/testdb"
	"agrifi-backend/pkg/id"
)

func newTestUsecase(t *testing.T) (*Usecase, *mysql.WalletRepository) {
	t.Helper()
	db := testdb.Open(t)
	repo := mysql.NewWalletRepository(db)
	return NewUsecase(repo, mysql.NewGormUoW(db)), repo
}

func TestDeposit(t *testing.T) {
	uc, repo := newTestUsecase(t)
	ctx := context.Background()
	acc := id.NewID32()

	got, err := uc.Deposit(ctx, acc, 500)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got.Balance != 500 {
		t.Fatalf("balance = %d, want 500", got.Balance)
	}

	got, err = uc.Deposit(ctx, acc, 250)
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if got.Balance != 750 {
		t.Fatalf("balance = %d, want 750", got.Balance)
	}

	entries, err := repo.ListEntriesByRef(ctx, domain.KindDeposit, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 || entries[0].From != "" || entries[0].To != acc {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestDeposit_Guards(t *testing.T) {
	uc, _ := newTestUsecase(t)
	ctx := context.Background()

	if _, err := uc.Deposit(ctx, id.Zero, 100); !errors.Is(err, ledger.ErrInvalidAddress) {
		t.Fatalf("zero caller: err = %v, want invalid address", err)
	}
	if _, err := uc.Deposit(ctx, id.NewID32(), 0); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("zero amount: err = %v, want invalid amount", err)
	}
	if _, err := uc.Deposit(ctx, id.NewID32(), -5); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("negative amount: err = %v, want invalid amount", err)
	}
}

func TestBalance(t *testing.T) {
	uc, _ := newTestUsecase(t)
	ctx := context.Background()
	acc := id.NewID32()

	if _, err := uc.Balance(ctx, acc); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("unknown account: err = %v, want not found", err)
	}

	if _, err := uc.Deposit(ctx, acc, 900); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	got, err := uc.Balance(ctx, acc)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.AccountID != acc || got.Balance != 900 {
		t.Fatalf("account = %+v", got)
	}
}
