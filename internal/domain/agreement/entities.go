package agreement

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusProposed     Status = "proposed"
	StatusFunded       Status = "funded"
	StatusProduceReady Status = "produce_ready"
	StatusSettled      Status = "settled"
	StatusDefaulted    Status = "defaulted"
)

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool { return s == StatusSettled || s == StatusDefaulted }

// Option is the investor's settlement mode, fixed at funding time.
type Option string

const (
	OptionUnset          Option = "unset"
	OptionDeliverProduce Option = "deliver_produce"
	OptionShareProfits   Option = "share_profits"
)

// Valid reports whether o is a fundable option. OptionUnset is only a
// placeholder for proposed agreements.
func (o Option) Valid() bool {
	return o == OptionDeliverProduce || o == OptionShareProfits
}

// MaxShareBps is 100% expressed in basis points.
const MaxShareBps = 10000

// PayoutFor returns the investor's cut of a reported sale, in minor units.
// Split into quotient and remainder so the multiplication cannot overflow
// for any valid sale amount.
func PayoutFor(saleAmount int64, shareBps uint32) int64 {
	bps := int64(shareBps)
	return saleAmount/MaxShareBps*bps + saleAmount%MaxShareBps*bps/MaxShareBps
}

// Agreement is a crop investment deal. Investor, Option and SaleAmount stay at
// their zero values until funding (respectively settlement) fixes them. The
// collateral token is held by the agreement custody account from proposal
// until a terminal transition releases it.
type Agreement struct {
	ID               uint64         `gorm:"primaryKey;column:id" json:"id"`
	Farmer           string         `gorm:"size:32;index:idx_agreements_farmer" json:"farmer"`
	Investor         string         `gorm:"size:32" json:"investor,omitempty"`
	TokenID          uint64         `gorm:"not null;index" json:"token_id"`
	InvestAmount     int64          `gorm:"not null" json:"invest_amount"`
	InvestorShareBps uint32         `gorm:"not null" json:"investor_share_bps"`
	ExpectedQuantity uint64         `gorm:"not null" json:"expected_quantity"`
	Option           Option         `gorm:"size:16;default:'unset'" json:"option"`
	HarvestDeadline  time.Time      `gorm:"not null" json:"harvest_deadline"`
	DeliveryDeadline time.Time      `gorm:"not null" json:"delivery_deadline"`
	SaleAmount       int64          `json:"sale_amount,omitempty"`
	Status           Status         `gorm:"size:16;default:'proposed';index" json:"status"`
	StatusUpdatedAt  time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Agreement) TableName() string { return "agreements" }

// Settings is the agreement ledger's single control row: the administrative
// owner and the oracle trusted to confirm off-chain deliveries.
type Settings struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	Owner     string    `gorm:"size:32;not null"`
	Oracle    string    `gorm:"size:32;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string { return "agreement_settings" }
