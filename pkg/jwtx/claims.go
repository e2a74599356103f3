package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ratewatch/ratewatch/pkg/idx"
)

// DefaultSessionTTL is the default lifetime for admin session tokens.
const DefaultSessionTTL = time.Hour

// SessionClaims are the claims carried by an admin session token. Additive
// changes only, to keep older tokens parseable.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Role asserted by the token. Validation requires an exact match.
	Role string `json:"role,omitempty"`
}

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(role, issuer string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
	}
}

// NewJTI returns a sortable unique identifier for the "jti" claim.
func NewJTI() string {
	return idx.New().String()
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *SessionClaims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateRole checks the role claim against the expected value.
func (c *SessionClaims) ValidateRole(expected string) error {
	if c.Role != expected {
		return ErrRole
	}
	return nil
}
