package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ratewatch/ratewatch/internal/trust/domain"
	"github.com/ratewatch/ratewatch/internal/trust/notify"
	"github.com/ratewatch/ratewatch/internal/trust/store"
	"github.com/ratewatch/ratewatch/pkg/cryptox"
)

const (
	defaultCodeDigits  = 6
	defaultCodeTTL     = 30 * time.Minute
	defaultMaxAttempts = 5
)

// VerificationService drives the one-time-code state machine per email.
// The attempt-limit check and counter increment are a single atomic step
// under a per-email lock, so concurrent attempts for the same address
// cannot both sneak under the ceiling. Attempt limits are scoped to the
// calendar day; the reset at midnight is an accepted trade-off.
type VerificationService struct {
	Store      store.Store
	Dispatcher *notify.Dispatcher
	Logger     *slog.Logger

	CodeDigits  int
	CodeTTL     time.Duration
	MaxAttempts int
	Location    *time.Location // timezone for dates and event timestamps

	now func() time.Time // test hook

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (s *VerificationService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *VerificationService) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *VerificationService) codeDigits() int {
	if s.CodeDigits > 0 {
		return s.CodeDigits
	}
	return defaultCodeDigits
}

func (s *VerificationService) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return defaultCodeTTL
}

func (s *VerificationService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return defaultMaxAttempts
}

// lockFor returns the mutex guarding the given email's record, creating it
// on first use. Locks are never removed; the key space is bounded by the
// set of addresses being verified.
func (s *VerificationService) lockFor(email string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[email]
	if !ok {
		l = &sync.Mutex{}
		s.locks[email] = l
	}
	return l
}

// IssueCode creates a fresh code for the email, replacing any prior record
// and restarting the state machine. The returned code goes to the delivery
// channel (out of scope here); it is never logged.
func (s *VerificationService) IssueCode(ctx context.Context, email string) (string, error) {
	email = domain.NormalizeEmail(email)
	lock := s.lockFor(email)
	lock.Lock()
	defer lock.Unlock()

	code, err := cryptox.GenerateNumericCode(s.codeDigits())
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	now := s.clock()
	record := domain.VerificationRequest{
		Email:           email,
		Code:            code,
		ExpiresAt:       now.Add(s.codeTTL()),
		AttemptsToday:   0,
		LastAttemptDate: "",
	}
	if err := s.Store.Verifications().Upsert(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store verification request: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("verification code issued", "email", email, "expires_at", record.ExpiresAt)
	}
	return code, nil
}

// Verify runs one attempt against the email's pending code.
//
// Outcomes, checked in order:
//   - no record               -> ErrNoActiveCode (covers never-issued and
//     already-consumed identically, so callers can't enumerate)
//   - past expiry             -> ErrCodeExpired
//   - daily ceiling reached   -> ErrAttemptsExceeded (counter resets on the
//     first attempt of a new calendar day)
//   - code mismatch           -> ErrCodeMismatch (attempt consumed)
//   - match                   -> nil; the record is consumed and the admin
//     notification dispatched asynchronously
func (s *VerificationService) Verify(ctx context.Context, email, code string) error {
	email = domain.NormalizeEmail(email)
	lock := s.lockFor(email)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.Store.Verifications().Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveCode
		}
		return fmt.Errorf("failed to load verification request: %w", err)
	}

	now := s.clock()
	if record.ExpiredAt(now) {
		return ErrCodeExpired
	}

	today := now.In(s.location()).Format(time.DateOnly)
	attempts := record.AttemptsOn(today)
	if attempts >= s.maxAttempts() {
		return ErrAttemptsExceeded
	}

	// Check and increment are one step under the per-email lock.
	record.AttemptsToday = attempts + 1
	record.LastAttemptDate = today

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		if err := s.Store.Verifications().Upsert(ctx, record); err != nil {
			return fmt.Errorf("failed to record verification attempt: %w", err)
		}
		return ErrCodeMismatch
	}

	// Consume the code so it can never validate twice.
	if err := s.Store.Verifications().Delete(ctx, email); err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("email verified", "email", email)
	}

	// Fire-and-forget: notification failure cannot downgrade the success.
	if s.Dispatcher != nil {
		event := notify.VerificationSucceeded(email, now, s.location())
		go s.Dispatcher.Dispatch(event)
	}
	return nil
}
