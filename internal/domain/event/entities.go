package event

import (
	"encoding/json"
	"time"
)

// Ledger names used in event rows and publish channels.
const (
	LedgerToken     = "token"
	LedgerLoan      = "loan"
	LedgerAgreement = "agreement"
)

// Event is one append-only record of a completed state change, written in the
// same transaction as the change itself. Payload holds the operation's key
// arguments as JSON for off-service observers.
type Event struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Ledger    string    `gorm:"size:16;index:idx_events_ref" json:"ledger"`
	Name      string    `gorm:"size:48;not null" json:"name"`
	RefID     uint64    `gorm:"index:idx_events_ref" json:"ref_id"`
	Actor     string    `gorm:"size:32" json:"actor"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "events" }

// New builds an event row; payload marshalling errors are impossible for the
// map[string]any payloads used here, so they are swallowed.
func New(ledger, name string, refID uint64, actor string, payload map[string]any) *Event {
	b, _ := json.Marshal(payload)
	return &Event{Ledger: ledger, Name: name, RefID: refID, Actor: actor, Payload: string(b)}
}
