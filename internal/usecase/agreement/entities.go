package agreement

import "time"

type ProposeInput struct {
	TokenID          uint64
	InvestAmount     int64
	InvestorShareBps uint32
	ExpectedQuantity uint64
	HarvestDeadline  time.Time
	DeliveryDeadline time.Time
}

type AgreementDTO struct {
	ID               uint64    `json:"id"`
	Farmer           string    `json:"farmer"`
	Investor         string    `json:"investor,omitempty"`
	TokenID          uint64    `json:"token_id"`
	InvestAmount     int64     `json:"invest_amount"`
	InvestorShareBps uint32    `json:"investor_share_bps"`
	ExpectedQuantity uint64    `json:"expected_quantity"`
	Option           string    `json:"option"`
	HarvestDeadline  time.Time `json:"harvest_deadline"`
	DeliveryDeadline time.Time `json:"delivery_deadline"`
	SaleAmount       int64     `json:"sale_amount,omitempty"`
	Status           string    `json:"status"`
	StatusUpdatedAt  time.Time `json:"status_updated_at"`
	CreatedAt        time.Time `json:"created_at"`
}
