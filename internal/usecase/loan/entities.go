package loan

import "time"

type LoanDTO struct {
	ID             uint64     `json:"id"`
	Borrower       string     `json:"borrower"`
	Lender         string     `json:"lender,omitempty"`
	Principal      int64      `json:"principal"`
	Interest       int64      `json:"interest"`
	TokenID        uint64     `json:"token_id"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	State          string     `json:"state"`
	StateUpdatedAt time.Time  `json:"state_updated_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
