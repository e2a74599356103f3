package service

import "errors"

// Sentinel errors surfaced by the trust services. Handlers map these to
// user-safe messages and status codes; anything not listed here is an
// internal failure.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrCodeExpired      = errors.New("verification code expired")
	ErrAttemptsExceeded = errors.New("verification attempt limit reached")
	ErrCodeMismatch     = errors.New("verification code mismatch")
	ErrNoActiveCode     = errors.New("no active verification code")
)
