package wallet

import "time"

// Account carries a balance in minor units. Balances never go negative; every
// movement is journaled as an Entry in the same transaction.
type Account struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	AccountID string    `gorm:"size:32;uniqueIndex:ux_accounts_account_id" json:"account_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

type Kind string

const (
	KindDeposit     Kind = "deposit"
	KindLoanFunding Kind = "loan_funding"
	KindRepayment   Kind = "repayment"
	KindInvestment  Kind = "investment"
	KindProfitShare Kind = "profit_share"
)

// Entry is one journaled movement. From is empty for deposits (external
// top-ups). RefID points at the loan/agreement that caused the movement.
type Entry struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	From      string    `gorm:"size:32;column:from_account" json:"from,omitempty"`
	To        string    `gorm:"size:32;column:to_account" json:"to"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Kind      Kind      `gorm:"size:16;not null" json:"kind"`
	RefID     uint64    `gorm:"index" json:"ref_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "wallet_entries" }
