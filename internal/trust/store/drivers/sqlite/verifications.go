package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ratewatch/ratewatch/internal/trust/domain"
)

type verificationsRepo struct {
	db *sql.DB
}

func (r *verificationsRepo) Get(ctx context.Context, email string) (domain.VerificationRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT email, code, expires_at, attempts_today, last_attempt_date, created_at, updated_at
		 FROM verification_requests WHERE email = ?`, email)

	var v domain.VerificationRequest
	err := row.Scan(
		&v.Email,
		&v.Code,
		&v.ExpiresAt,
		&v.AttemptsToday,
		&v.LastAttemptDate,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return domain.VerificationRequest{}, mapNotFound(err)
	}
	return v, nil
}

func (r *verificationsRepo) Upsert(ctx context.Context, v domain.VerificationRequest) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_requests
		 (email, code, expires_at, attempts_today, last_attempt_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET
		   code = excluded.code,
		   expires_at = excluded.expires_at,
		   attempts_today = excluded.attempts_today,
		   last_attempt_date = excluded.last_attempt_date,
		   updated_at = excluded.updated_at`,
		v.Email, v.Code, v.ExpiresAt, v.AttemptsToday, v.LastAttemptDate, now, now)
	return err
}

func (r *verificationsRepo) Delete(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_requests WHERE email = ?`, email)
	return err
}
