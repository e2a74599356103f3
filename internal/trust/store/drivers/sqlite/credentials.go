package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/ratewatch/ratewatch/internal/trust/domain"
)

type credentialsRepo struct {
	db *sql.DB
}

func (r *credentialsRepo) Get(ctx context.Context) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT password_hash, updated_at FROM admin_credential WHERE id = 1`)

	var c domain.Credential
	if err := row.Scan(&c.PasswordHash, &c.UpdatedAt); err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) Seed(ctx context.Context, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_credential (id, password_hash, updated_at)
		 VALUES (1, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		passwordHash, time.Now().UTC())
	return err
}

func (r *credentialsRepo) Replace(ctx context.Context, newHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE admin_credential SET password_hash = ?, updated_at = ? WHERE id = 1`,
		newHash, time.Now().UTC())
	return err
}
