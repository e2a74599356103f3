package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ratewatch/ratewatch/internal/trust/notify"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(ctx context.Context, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newVerificationService(t *testing.T) (*VerificationService, *recordingMailer) {
	t.Helper()

	mailer := &recordingMailer{}
	svc := &VerificationService{
		Store:       newTestStore(t),
		Dispatcher:  &notify.Dispatcher{Mailer: mailer},
		CodeTTL:     30 * time.Minute,
		MaxAttempts: 5,
	}
	return svc, mailer
}

func TestVerifyHappyPath(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, svc.Verify(ctx, "user@x.com", code))
}

func TestVerifyConsumesCodeExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, "user@x.com", code))
	require.ErrorIs(t, svc.Verify(ctx, "user@x.com", code), ErrNoActiveCode)
}

func TestVerifyNeverIssuedEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	require.ErrorIs(t, svc.Verify(ctx, "stranger@x.com", "123456"), ErrNoActiveCode)
}

func TestVerifyEmailNormalization(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	code, err := svc.IssueCode(ctx, "User@X.com")
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, "  user@x.COM ", code))
}

func TestVerifyExpiredCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	// Exactly at the expiry boundary the code is already dead, even when
	// the value is correct.
	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	require.ErrorIs(t, svc.Verify(ctx, "user@x.com", code), ErrCodeExpired)
}

func TestVerifyAttemptCeilingScenario(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newVerificationService(t)

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// Four wrong attempts each report a mismatch.
	for i := range 4 {
		require.ErrorIs(t, svc.Verify(ctx, "user@x.com", wrong), ErrCodeMismatch, "attempt %d", i+1)
	}

	// Fifth attempt with the right code still succeeds (ceiling is 5).
	require.NoError(t, svc.Verify(ctx, "user@x.com", code))

	// Sixth attempt: consumed, regardless of the code value.
	require.ErrorIs(t, svc.Verify(ctx, "user@x.com", code), ErrNoActiveCode)
	require.ErrorIs(t, svc.Verify(ctx, "user@x.com", wrong), ErrNoActiveCode)

	require.Eventually(t, func() bool { return mailer.count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestVerifyAttemptsExceeded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for range 5 {
		require.ErrorIs(t, svc.Verify(ctx, "user@x.com", wrong), ErrCodeMismatch)
	}

	// Sixth attempt of the day is rejected before the code is even compared.
	require.ErrorIs(t, svc.Verify(ctx, "user@x.com", code), ErrAttemptsExceeded)
}

func TestAttemptCounterResetsAcrossMidnight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)
	svc.CodeTTL = 48 * time.Hour

	base := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for range 5 {
		require.ErrorIs(t, svc.Verify(ctx, "user@x.com", wrong), ErrCodeMismatch)
	}
	require.ErrorIs(t, svc.Verify(ctx, "user@x.com", code), ErrAttemptsExceeded)

	// Date rolls over; the counter resets on the first attempt of the new day.
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, svc.Verify(ctx, "user@x.com", code))
}

func TestReissueDiscardsPriorCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)

	first, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)
	second, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	if first != second {
		require.ErrorIs(t, svc.Verify(ctx, "user@x.com", first), ErrCodeMismatch)
	}
	require.NoError(t, svc.Verify(ctx, "user@x.com", second))
}

func TestConcurrentAttemptsRespectCeiling(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)
	svc.MaxAttempts = 3

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	const workers = 16
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Verify(ctx, "user@x.com", wrong)
		}()
	}
	wg.Wait()
	close(results)

	mismatches := 0
	for err := range results {
		switch {
		case err == nil:
			t.Fatal("wrong code must never verify")
		case errors.Is(err, ErrCodeMismatch):
			mismatches++
		case errors.Is(err, ErrAttemptsExceeded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly MaxAttempts attempts were admitted past the ceiling check.
	require.Equal(t, 3, mismatches)
}

func TestSuccessSurvivesNotificationFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVerificationService(t)
	svc.Dispatcher = &notify.Dispatcher{Mailer: failingMailer{}}

	code, err := svc.IssueCode(ctx, "user@x.com")
	require.NoError(t, err)

	// Verification succeeds even though every notification send fails.
	require.NoError(t, svc.Verify(ctx, "user@x.com", code))
}

type failingMailer struct{}

func (failingMailer) Send(ctx context.Context, subject, body string) error {
	return context.DeadlineExceeded
}
