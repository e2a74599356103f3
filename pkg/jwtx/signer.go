package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrRole        = errors.New("jwtx: role mismatch")

	errShortSecret = errors.New("jwtx: signing secret must be at least 32 bytes")
)

// Signer is our interface for anything that can sign session tokens.
type Signer interface {
	Sign(SessionClaims) (string, error)
}

// Verifier validates a token and gives you back the claims if it's legit.
// Returned errors are the jwtx sentinels above, never library internals.
type Verifier interface {
	Verify(token string) (SessionClaims, error)
}

// minSecretBytes guards against trivially brute-forceable HMAC keys.
const minSecretBytes = 32

// HS256 signs and verifies session tokens with a single process-wide
// HMAC-SHA256 secret. Rotating the secret implicitly revokes every
// outstanding token.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds an HS256 signer/verifier from the given secret.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < minSecretBytes {
		return nil, errShortSecret
	}

	// Copy so the caller can't mutate our key from outside.
	k := make([]byte, len(secret))
	copy(k, secret)

	return &HS256{secret: k, issuer: issuer}, nil
}

// Sign produces a compact serialized token for the given claims.
func (h *HS256) Sign(claims SessionClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(h.secret)
}

// Verify parses and validates a compact token. Structural problems,
// signature mismatches, and expiry all map to jwtx sentinel errors so
// callers can collapse them to a single "invalid" outcome.
func (h *HS256) Verify(token string) (SessionClaims, error) {
	var claims SessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(func() time.Time { return time.Now().UTC() }),
	)
	if err != nil {
		return SessionClaims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return SessionClaims{}, ErrInvalidSig
	}

	// exp is mandatory for session tokens even though JWT makes it optional.
	if claims.ExpiresAt == nil {
		return SessionClaims{}, ErrMalformed
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
