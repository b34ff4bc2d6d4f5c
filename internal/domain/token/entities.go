package token

import (
	"time"

	"gorm.io/gorm"
)

// Token is one crop-lot collateral token. The URI is fixed at mint time;
// burning soft-deletes the row and clears owner/URI so an id is never reused
// for a different lot.
type Token struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"id"`
	Owner     string         `gorm:"size:32;index:idx_tokens_owner" json:"owner"`
	Approved  string         `gorm:"size:32" json:"approved,omitempty"`
	URI       string         `gorm:"type:text" json:"uri"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Token) TableName() string { return "tokens" }

// ControlledBy reports whether caller may move the token: the owner always
// can, and so can the single approved operator.
func (t *Token) ControlledBy(caller string) bool {
	return caller != "" && (t.Owner == caller || t.Approved == caller)
}
