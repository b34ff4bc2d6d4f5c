package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

// Zero is the all-zero identity. It is never a valid principal; supplying it
// where a real account is required fails with ErrInvalidAddress.
const Zero = "00000000000000000000000000000000"

var reID32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Valid reports whether s is a well-formed 32-char lowercase hex identity.
func Valid(s string) bool { return reID32.MatchString(s) }

// IsZero reports whether s is the all-zero identity.
func IsZero(s string) bool { return s == Zero }
