package token

import "time"

type TokenDTO struct {
	ID        uint64    `json:"id"`
	Owner     string    `json:"owner"`
	Approved  string    `json:"approved,omitempty"`
	URI       string    `json:"uri"`
	CreatedAt time.Time `json:"created_at"`
}
