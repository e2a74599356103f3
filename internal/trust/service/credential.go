package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ratewatch/ratewatch/internal/trust/store"
	"github.com/ratewatch/ratewatch/pkg/cryptox"
)

// CredentialService owns the single process-wide admin credential. All
// mutation goes through Rotate; reads race freely against the store but
// writes are serialized so interleaved rotations can't lose updates.
type CredentialService struct {
	Store  store.Store
	Logger *slog.Logger

	mu sync.Mutex
}

// EnsureSeeded hashes and stores the configured default password if no
// credential exists yet. Existing credentials are left untouched.
func (s *CredentialService) EnsureSeeded(ctx context.Context, defaultPassword string) error {
	_, err := s.Store.Credentials().Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to read credential: %w", err)
	}

	hash, err := cryptox.HashPassword(defaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}
	if err := s.Store.Credentials().Seed(ctx, hash); err != nil {
		return fmt.Errorf("failed to seed credential: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Warn("admin credential seeded from configuration default; rotate it")
	}
	return nil
}

// Verify checks a candidate password against the stored credential.
// Returns ErrInvalidCredentials on mismatch or when no credential exists;
// storage failures are returned as-is.
func (s *CredentialService) Verify(ctx context.Context, password string) error {
	cred, err := s.Store.Credentials().Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to read credential: %w", err)
	}

	if err := cryptox.VerifyPassword(password, cred.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Rotate replaces the admin password. The old password is verified first;
// on any failure the stored credential is left unchanged. Outstanding
// session tokens stay valid until their natural expiry.
func (s *CredentialService) Rotate(ctx context.Context, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Verify(ctx, oldPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.Store.Credentials().Replace(ctx, hash); err != nil {
		return fmt.Errorf("failed to replace credential: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("admin credential rotated")
	}
	return nil
}
