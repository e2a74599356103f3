package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// otpSecretBytes is the entropy fed into each code derivation (RFC 4226
// recommends at least 128 bits; we use 160).
const otpSecretBytes = 20

// GenerateNumericCode returns a uniformly distributed numeric one-time code
// of the given digit count. Each call derives the code from a fresh random
// secret and counter via HOTP, so codes carry no structure beyond their
// length.
func GenerateNumericCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", fmt.Errorf("cryptox: unsupported code length %d", digits)
	}

	raw := make([]byte, otpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate code secret: %w", err)
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)

	var counterBytes [8]byte
	if _, err := rand.Read(counterBytes[:]); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate code counter: %w", err)
	}
	counter := binary.BigEndian.Uint64(counterBytes[:])

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to derive code: %w", err)
	}

	return code, nil
}
