package loan

import (
	"time"

	"gorm.io/gorm"
)

type State string

const (
	StateRequested  State = "requested"
	StateFunded     State = "funded"
	StateRepaid     State = "repaid"
	StateLiquidated State = "liquidated"
)

// Terminal reports whether no further transition may leave the state.
func (s State) Terminal() bool { return s == StateRepaid || s == StateLiquidated }

const (
	// InterestRatePct is the fixed interest rate applied to every loan.
	InterestRatePct = 5
	// Duration is the repayment window, measured from funding time.
	Duration = 90 * 24 * time.Hour
)

// InterestFor returns the fixed interest owed on principal, in minor units.
func InterestFor(principal int64) int64 { return principal * InterestRatePct / 100 }

// Loan is a collateral-backed microloan. Lender and Deadline stay unset until
// the loan is funded. The collateral token is held by the loan custody account
// for the lifetime of the requested/funded states.
type Loan struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"id"`
	Borrower       string         `gorm:"size:32;index:idx_loans_borrower" json:"borrower"`
	Lender         string         `gorm:"size:32" json:"lender,omitempty"`
	Principal      int64          `gorm:"not null" json:"principal"`
	Interest       int64          `gorm:"not null" json:"interest"`
	TokenID        uint64         `gorm:"not null;index" json:"token_id"`
	Deadline       *time.Time     `json:"deadline,omitempty"`
	State          State          `gorm:"size:16;default:'requested';index" json:"state"`
	StateUpdatedAt time.Time      `gorm:"autoCreateTime" json:"state_updated_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }
