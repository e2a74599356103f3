package service

import (
	"fmt"
	"time"

	"github.com/ratewatch/ratewatch/pkg/jwtx"
)

// AdminRole is the only role accepted on session tokens.
const AdminRole = "admin"

// SessionService issues and validates admin session tokens. Tokens are
// bearer credentials: possession plus a valid signature is sufficient.
type SessionService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration

	now func() time.Time // test hook
}

func (s *SessionService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultSessionTTL
}

// Issue mints a signed session token for the given role and reports its
// lifetime so callers can relay expires_in.
func (s *SessionService) Issue(role string) (string, time.Duration, error) {
	claims := jwtx.NewSessionClaims(role, s.Issuer, s.ttl(), s.clock())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, s.ttl(), nil
}

// Validate reports whether the token is an unexpired admin session token.
// All failure detail (bad signature, malformed payload, wrong role,
// expiry) collapses to false; this method never panics.
func (s *SessionService) Validate(token string) bool {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return false
	}
	if err := claims.ValidateRole(AdminRole); err != nil {
		return false
	}
	if err := claims.ValidateExpiry(); err != nil {
		return false
	}
	return true
}
