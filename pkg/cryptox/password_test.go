package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Each test binary gets its own pepper file.
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	SetPepperPath(filepath.Join(dir, "pepper"))
	m.Run()
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t, VerifyPassword("wrong password", hash), ErrPasswordMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plainhash",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	} {
		err := VerifyPassword("anything", encoded)
		require.Error(t, err, "hash %q", encoded)
		require.NotErrorIs(t, err, ErrPasswordMismatch, "hash %q", encoded)
	}
}
