package domain

import (
	"strings"
	"time"
)

// VerificationRequest is the pending one-time code for a single email.
// It is created by issuing a code, mutated only through verification
// attempts, and consumed (deleted) on a successful match.
type VerificationRequest struct {
	Email           string // normalized, primary key
	Code            string // short numeric string
	ExpiresAt       time.Time
	AttemptsToday   int
	LastAttemptDate string // calendar date of the last attempt, "2006-01-02"
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ExpiredAt reports whether the request is past its expiry at the given time.
func (v VerificationRequest) ExpiredAt(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// AttemptsOn returns the attempt count that applies on the given calendar
// date. Counts reset when the date differs from the last attempt's date.
func (v VerificationRequest) AttemptsOn(date string) int {
	if v.LastAttemptDate != date {
		return 0
	}
	return v.AttemptsToday
}

// NormalizeEmail maps an email address to its canonical form. Verification
// records are keyed by this value so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
