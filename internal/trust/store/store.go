package store

import (
	"context"
	"errors"

	"github.com/ratewatch/ratewatch/internal/trust/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface for the trust subsystem.
// Concrete drivers (sqlite for now) implement this. Sub-repositories keep
// concerns tidy and individually mockable in tests.
type Store interface {
	Credentials() Credentials
	Verifications() Verifications

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Credentials interface {
	// Get returns the active admin credential, or ErrNotFound before seeding.
	Get(ctx context.Context) (domain.Credential, error)

	// Seed inserts the credential row if and only if none exists yet.
	Seed(ctx context.Context, passwordHash string) error

	// Replace swaps the stored hash in a single statement and bumps
	// updated_at. The caller is responsible for verifying the old password
	// first; Replace itself never merges old and new state.
	Replace(ctx context.Context, newHash string) error
}

type Verifications interface {
	// Get returns the verification record for a normalized email.
	Get(ctx context.Context, email string) (domain.VerificationRequest, error)

	// Upsert inserts or wholly replaces the record keyed by its email.
	Upsert(ctx context.Context, v domain.VerificationRequest) error

	// Delete consumes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, email string) error
}
