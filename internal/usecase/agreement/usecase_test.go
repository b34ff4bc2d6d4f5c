package agreement

import (
	"context"
	"errors"
	"testing"
	"time"

	"agrifi-backend/internal/adapter/repository/mysql"
	domain "agrifi-backend/internal/domain/agreement"
	"agrifi-backend/internal/domain/ledger"
	tokenDomain "agrifi-backend/internal/domain/token"
	walletDomain "agrifi-backend/internal/domain/wallet"
	"agrifi-backend/internal/testutil/testdb"
	"agrifi-backend/pkg/id"
)

const testCustodyID = "00000000000000000000000000000102"

type testEnv struct {
	uc      *Usecase
	repo    *mysql.AgreementRepository
	tokens  *mysql.TokenRepository
	wallets *mysql.WalletRepository
	owner   string
	oracle  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.Open(t)
	env := &testEnv{
		repo:    mysql.NewAgreementRepository(db),
		tokens:  mysql.NewTokenRepository(db),
		wallets: mysql.NewWalletRepository(db),
		owner:   id.NewID32(),
		oracle:  id.NewID32(),
	}
	env.uc = NewUsecase(env.repo, mysql.NewEventRepository(db), mysql.NewGormUoW(db), nil, testCustodyID)
	if _, err := env.repo.EnsureSettings(context.Background(), env.owner, env.oracle); err != nil {
		t.Fatalf("ensure settings: %v", err)
	}
	return env
}

func (e *testEnv) at(ts time.Time) { e.uc.now = func() time.Time { return ts } }

func (e *testEnv) mintToken(t *testing.T, owner string) uint64 {
	t.Helper()
	tok := &tokenDomain.Token{Owner: owner, URI: "ipfs://lot"}
	if err := e.tokens.Create(context.Background(), tok); err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok.ID
}

func (e *testEnv) fundAccount(t *testing.T, account string, balance int64) {
	t.Helper()
	if err := e.wallets.CreateAccount(context.Background(), &walletDomain.Account{AccountID: account, Balance: balance}); err != nil {
		t.Fatalf("fund account: %v", err)
	}
}

func (e *testEnv) balance(t *testing.T, account string) int64 {
	t.Helper()
	a, err := e.wallets.GetByAccountID(context.Background(), account)
	if err != nil {
		t.Fatalf("balance of %s: %v", account, err)
	}
	return a.Balance
}

func (e *testEnv) tokenOwner(t *testing.T, tokenID uint64) string {
	t.Helper()
	tok, err := e.tokens.GetByID(context.Background(), tokenID)
	if err != nil {
		t.Fatalf("token %d: %v", tokenID, err)
	}
	return tok.Owner
}

func (e *testEnv) propose(t *testing.T, farmer string, tokenID uint64, base time.Time) *AgreementDTO {
	t.Helper()
	dto, err := e.uc.Propose(context.Background(), farmer, ProposeInput{
		TokenID:          tokenID,
		InvestAmount:     2_000_000,
		InvestorShareBps: 3000,
		ExpectedQuantity: 1000,
		HarvestDeadline:  base.Add(60 * 24 * time.Hour),
		DeliveryDeadline: base.Add(90 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	return dto
}

func TestPropose(t *testing.T) {
	env := newTestEnv(t)
	farmer := id.NewID32()
	tokenID := env.mintToken(t, farmer)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)

	dto := env.propose(t, farmer, tokenID, base)
	if dto.ID != 1 || dto.Status != string(domain.StatusProposed) || dto.Option != string(domain.OptionUnset) {
		t.Fatalf("agreement = %+v", dto)
	}
	if dto.Investor != "" {
		t.Fatalf("investor fixed before funding: %q", dto.Investor)
	}
	if owner := env.tokenOwner(t, tokenID); owner != testCustodyID {
		t.Fatalf("collateral owner = %q, want custody", owner)
	}
}

func TestPropose_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer, stranger := id.NewID32(), id.NewID32()
	tokenID := env.mintToken(t, farmer)
	in := ProposeInput{TokenID: tokenID, InvestAmount: 100, InvestorShareBps: 1000, ExpectedQuantity: 10}

	bad := in
	bad.InvestAmount = 0
	if _, err := env.uc.Propose(ctx, farmer, bad); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("zero amount: err = %v, want invalid amount", err)
	}

	bad = in
	bad.InvestorShareBps = domain.MaxShareBps + 1
	if _, err := env.uc.Propose(ctx, farmer, bad); !errors.Is(err, ledger.ErrInvalidShare) {
		t.Fatalf("share over 100%%: err = %v, want invalid share", err)
	}

	if _, err := env.uc.Propose(ctx, stranger, in); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("not token owner: err = %v, want unauthorized", err)
	}
	if owner := env.tokenOwner(t, tokenID); owner != farmer {
		t.Fatalf("collateral moved on rejected proposal: owner = %q", owner)
	}

	// the full share is allowed, everything above it is not
	full := in
	full.InvestorShareBps = domain.MaxShareBps
	if _, err := env.uc.Propose(ctx, farmer, full); err != nil {
		t.Fatalf("full share: %v", err)
	}
}

func TestFund(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer, investor := id.NewID32(), id.NewID32()
	tokenID := env.mintToken(t, farmer)
	env.fundAccount(t, investor, 2_000_000)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)
	dto := env.propose(t, farmer, tokenID, base)

	// the option must be picked before money moves, whatever the amount
	if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionUnset, 2_000_000); !errors.Is(err, ledger.ErrInvalidOption) {
		t.Fatalf("unset option: err = %v, want invalid option", err)
	}
	if _, err := env.uc.Fund(ctx, investor, dto.ID, "barter", 2_000_000); !errors.Is(err, ledger.ErrInvalidOption) {
		t.Fatalf("unknown option: err = %v, want invalid option", err)
	}
	if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionShareProfits, 1_999_999); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("short amount: err = %v, want invalid amount", err)
	}

	funded, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionShareProfits, 2_000_000)
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	if funded.Status != string(domain.StatusFunded) || funded.Investor != investor || funded.Option != string(domain.OptionShareProfits) {
		t.Fatalf("funded = %+v", funded)
	}
	if got := env.balance(t, farmer); got != 2_000_000 {
		t.Fatalf("farmer balance = %d, want 2000000", got)
	}
	if got := env.balance(t, investor); got != 0 {
		t.Fatalf("investor balance = %d, want 0", got)
	}

	if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionShareProfits, 2_000_000); !errors.Is(err, ledger.ErrInvalidState) {
		t.Fatalf("double fund: err = %v, want invalid state", err)
	}
	if _, err := env.uc.Fund(ctx, investor, 999, domain.OptionShareProfits, 100); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("unknown agreement: err = %v, want not found", err)
	}
}

func TestShareProfitsSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer, investor := id.NewID32(), id.NewID32()
	tokenID := env.mintToken(t, farmer)
	env.fundAccount(t, investor, 2_000_000)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)

	dto := env.propose(t, farmer, tokenID, base)
	if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionShareProfits, 2_000_000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if _, err := env.uc.ReportSale(ctx, farmer, dto.ID, 10_000_000); !errors.Is(err, ledger.ErrInvalidState) {
		t.Fatalf("sale before harvest: err = %v, want invalid state", err)
	}
	if _, err := env.uc.MarkHarvestReady(ctx, investor, dto.ID); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("investor marks harvest: err = %v, want unauthorized", err)
	}
	if _, err := env.uc.MarkHarvestReady(ctx, farmer, dto.ID); err != nil {
		t.Fatalf("mark harvest ready: %v", err)
	}

	if _, err := env.uc.ConfirmDelivery(ctx, investor, dto.ID); !errors.Is(err, ledger.ErrInvalidOption) {
		t.Fatalf("delivery confirm on profit share: err = %v, want invalid option", err)
	}
	if _, err := env.uc.ReportSale(ctx, investor, dto.ID, 10_000_000); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("investor reports sale: err = %v, want unauthorized", err)
	}
	if _, err := env.uc.ReportSale(ctx, farmer, dto.ID, 0); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("zero sale: err = %v, want invalid amount", err)
	}

	// sale proceeds land in the farmer's wallet before the split
	acc, err := env.wallets.GetByAccountID(ctx, farmer)
	if err != nil {
		t.Fatalf("farmer account: %v", err)
	}
	acc.Balance += 10_000_000
	if err := env.wallets.SaveAccount(ctx, acc); err != nil {
		t.Fatalf("top up farmer: %v", err)
	}

	settled, err := env.uc.ReportSale(ctx, farmer, dto.ID, 10_000_000)
	if err != nil {
		t.Fatalf("report sale: %v", err)
	}
	if settled.Status != string(domain.StatusSettled) || settled.SaleAmount != 10_000_000 {
		t.Fatalf("settled = %+v", settled)
	}
	// 30% of the sale goes to the investor
	if got := env.balance(t, investor); got != 3_000_000 {
		t.Fatalf("investor balance = %d, want 3000000", got)
	}
	if got := env.balance(t, farmer); got != 9_000_000 {
		t.Fatalf("farmer balance = %d, want 9000000", got)
	}
	if owner := env.tokenOwner(t, tokenID); owner != farmer {
		t.Fatalf("collateral owner = %q, want farmer", owner)
	}

	if _, err := env.uc.ReportSale(ctx, farmer, dto.ID, 10_000_000); !errors.Is(err, ledger.ErrInvalidState) {
		t.Fatalf("double settle: err = %v, want invalid state", err)
	}
}

func TestSelfDealNetsZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer := id.NewID32()
	tokenID := env.mintToken(t, farmer)
	env.fundAccount(t, farmer, 2_000_000)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)

	dto := env.propose(t, farmer, tokenID, base)

	// the farmer backing their own proposal moves nothing
	if _, err := env.uc.Fund(ctx, farmer, dto.ID, domain.OptionShareProfits, 2_000_000); err != nil {
		t.Fatalf("self fund: %v", err)
	}
	if got := env.balance(t, farmer); got != 2_000_000 {
		t.Fatalf("balance after self-fund = %d, want 2000000", got)
	}

	if _, err := env.uc.MarkHarvestReady(ctx, farmer, dto.ID); err != nil {
		t.Fatalf("mark harvest ready: %v", err)
	}

	// farmer == investor: the profit share pays out to the same account
	acc, err := env.wallets.GetByAccountID(ctx, farmer)
	if err != nil {
		t.Fatalf("farmer account: %v", err)
	}
	acc.Balance += 10_000_000
	if err := env.wallets.SaveAccount(ctx, acc); err != nil {
		t.Fatalf("top up farmer: %v", err)
	}
	settled, err := env.uc.ReportSale(ctx, farmer, dto.ID, 10_000_000)
	if err != nil {
		t.Fatalf("report sale: %v", err)
	}
	if settled.Status != string(domain.StatusSettled) {
		t.Fatalf("status = %q, want settled", settled.Status)
	}
	if got := env.balance(t, farmer); got != 12_000_000 {
		t.Fatalf("balance after self-settlement = %d, want 12000000", got)
	}
}

func TestDeliverProduceSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer, investor, stranger := id.NewID32(), id.NewID32(), id.NewID32()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)
	env.fundAccount(t, investor, 4_000_000)

	settle := func(confirmer string) (uint64, error) {
		tokenID := env.mintToken(t, farmer)
		dto := env.propose(t, farmer, tokenID, base)
		if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionDeliverProduce, 2_000_000); err != nil {
			t.Fatalf("fund: %v", err)
		}
		if _, err := env.uc.MarkHarvestReady(ctx, farmer, dto.ID); err != nil {
			t.Fatalf("mark harvest ready: %v", err)
		}
		_, err := env.uc.ConfirmDelivery(ctx, confirmer, dto.ID)
		return tokenID, err
	}

	tokenID, err := settle(stranger)
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("stranger confirm: err = %v, want unauthorized", err)
	}
	if _, err := env.uc.ConfirmDelivery(ctx, investor, 1); err != nil {
		t.Fatalf("investor confirm: %v", err)
	}
	if owner := env.tokenOwner(t, tokenID); owner != farmer {
		t.Fatalf("collateral owner = %q, want farmer", owner)
	}

	// the configured oracle may confirm on the investor's behalf
	if _, err := settle(env.oracle); err != nil {
		t.Fatalf("oracle confirm: %v", err)
	}
}

func TestClaimCollateral(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer, investor, stranger := id.NewID32(), id.NewID32(), id.NewID32()
	tokenID := env.mintToken(t, farmer)
	env.fundAccount(t, investor, 2_000_000)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)

	dto := env.propose(t, farmer, tokenID, base)
	harvestDeadline := base.Add(60 * 24 * time.Hour)
	deliveryDeadline := base.Add(90 * 24 * time.Hour)

	if _, err := env.uc.ClaimCollateral(ctx, investor, dto.ID); !errors.Is(err, ledger.ErrInvalidState) {
		t.Fatalf("claim while proposed: err = %v, want invalid state", err)
	}

	if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionDeliverProduce, 2_000_000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	env.at(harvestDeadline.Add(-time.Hour))
	if _, err := env.uc.ClaimCollateral(ctx, investor, dto.ID); !errors.Is(err, ledger.ErrNotYetExpired) {
		t.Fatalf("claim before harvest deadline: err = %v, want not yet expired", err)
	}

	// once produce is marked ready the later delivery deadline applies
	if _, err := env.uc.MarkHarvestReady(ctx, farmer, dto.ID); err != nil {
		t.Fatalf("mark harvest ready: %v", err)
	}
	env.at(harvestDeadline.Add(time.Hour))
	if _, err := env.uc.ClaimCollateral(ctx, investor, dto.ID); !errors.Is(err, ledger.ErrNotYetExpired) {
		t.Fatalf("claim before delivery deadline: err = %v, want not yet expired", err)
	}

	env.at(deliveryDeadline)
	if _, err := env.uc.ClaimCollateral(ctx, stranger, dto.ID); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("stranger claim: err = %v, want unauthorized", err)
	}
	claimed, err := env.uc.ClaimCollateral(ctx, investor, dto.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != string(domain.StatusDefaulted) {
		t.Fatalf("status = %q, want defaulted", claimed.Status)
	}
	if owner := env.tokenOwner(t, tokenID); owner != investor {
		t.Fatalf("collateral owner = %q, want investor", owner)
	}

	if _, err := env.uc.ClaimCollateral(ctx, investor, dto.ID); !errors.Is(err, ledger.ErrInvalidState) {
		t.Fatalf("double claim: err = %v, want invalid state", err)
	}
}

func TestClaimCollateral_MissedHarvest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	farmer, investor := id.NewID32(), id.NewID32()
	tokenID := env.mintToken(t, farmer)
	env.fundAccount(t, investor, 2_000_000)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	env.at(base)

	dto := env.propose(t, farmer, tokenID, base)
	if _, err := env.uc.Fund(ctx, investor, dto.ID, domain.OptionShareProfits, 2_000_000); err != nil {
		t.Fatalf("fund: %v", err)
	}

	env.at(base.Add(60 * 24 * time.Hour))
	claimed, err := env.uc.ClaimCollateral(ctx, investor, dto.ID)
	if err != nil {
		t.Fatalf("claim after missed harvest: %v", err)
	}
	if claimed.Status != string(domain.StatusDefaulted) {
		t.Fatalf("status = %q, want defaulted", claimed.Status)
	}
	if owner := env.tokenOwner(t, tokenID); owner != investor {
		t.Fatalf("collateral owner = %q, want investor", owner)
	}
}

func TestSetOracle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.uc.SetOracle(ctx, id.NewID32(), id.NewID32()); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("non-owner: err = %v, want unauthorized", err)
	}
	// the owner check comes first, even with a bad oracle argument
	if err := env.uc.SetOracle(ctx, id.NewID32(), id.Zero); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("non-owner with zero oracle: err = %v, want unauthorized", err)
	}
	if err := env.uc.SetOracle(ctx, env.owner, id.Zero); !errors.Is(err, ledger.ErrInvalidAddress) {
		t.Fatalf("zero oracle: err = %v, want invalid address", err)
	}

	next := id.NewID32()
	if err := env.uc.SetOracle(ctx, env.owner, next); err != nil {
		t.Fatalf("set oracle: %v", err)
	}
	s, err := env.repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if s.Oracle != next {
		t.Fatalf("oracle = %q, want %q", s.Oracle, next)
	}
}
