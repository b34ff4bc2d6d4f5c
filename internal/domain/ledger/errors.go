// Package ledger defines the fault taxonomy shared by every ledger in the
// service. Each failure aborts the enclosing transaction completely; nothing
// is retried server-side — resubmitting is the caller's call.
package ledger

import "errors"

var (
	ErrUnauthorized      = errors.New("caller lacks required role or ownership")
	ErrInvalidState      = errors.New("operation not valid for current lifecycle stage")
	ErrInvalidAmount     = errors.New("zero, mismatched or out-of-range amount")
	ErrInvalidShare      = errors.New("investor share cannot exceed 10000 basis points")
	ErrInvalidOption     = errors.New("fulfilment option unset or invalid")
	ErrExpired           = errors.New("deadline has passed")
	ErrNotYetExpired     = errors.New("deadline has not passed yet")
	ErrInvalidAddress    = errors.New("zero or malformed identity")
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
)
