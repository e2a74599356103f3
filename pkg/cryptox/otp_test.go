package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCodeLengthAndCharset(t *testing.T) {
	for _, digits := range []int{4, 6, 8} {
		code, err := GenerateNumericCode(digits)
		require.NoError(t, err)
		require.Len(t, code, digits)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q", code)
		}
	}
}

func TestGenerateNumericCodeRejectsBadLengths(t *testing.T) {
	for _, digits := range []int{0, 3, 11, -1} {
		_, err := GenerateNumericCode(digits)
		require.Error(t, err, "digits %d", digits)
	}
}

func TestGenerateNumericCodeVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for range 32 {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 32 draws from a million values colliding down to a handful would
	// indicate a broken generator.
	require.Greater(t, len(seen), 16)
}
