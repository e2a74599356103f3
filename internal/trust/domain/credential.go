package domain

import "time"

// Credential is the single process-wide admin credential. There is exactly
// one active value at a time; rotation replaces it whole.
type Credential struct {
	PasswordHash string // argon2 encoded
	UpdatedAt    time.Time
}
