package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"submitiq/backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, account_id, status, issued_ip, issued_agent,
	previous_session_id, expires_at, last_rotated_at, created_at`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	var (
		s           domain.Session
		status      string
		previousID  sql.NullString
		lastRotated sql.NullTime
	)
	err := row.Scan(&s.ID, &s.AccountID, &status, &s.IssuedIP, &s.IssuedAgent,
		&previousID, &s.ExpiresAt, &lastRotated, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.Status = domain.Status(status)
	if previousID.Valid {
		s.PreviousID = previousID.String
	}
	if lastRotated.Valid {
		t := lastRotated.Time
		s.LastRotatedAt = &t
	}
	return &s, nil
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.AccountID, string(s.Status), s.IssuedIP, s.IssuedAgent,
		sql.NullString{String: s.PreviousID, Valid: s.PreviousID != ""},
		s.ExpiresAt, timeToNullTime(s.LastRotatedAt), s.CreatedAt)
	return err
}

// UpdateStatus performs the compare-and-set on status. The WHERE clause on the
// current status is what makes concurrent rotations of one session safe.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $3, last_rotated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Revoke marks the session revoked regardless of its current status.
func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $2, last_rotated_at = $3 WHERE id = $1`,
		id, string(domain.StatusRevoked), at)
	return err
}

// RevokeAllByAccount revokes every live session of the account.
func (r *PostgresRepository) RevokeAllByAccount(ctx context.Context, accountID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $2, last_rotated_at = $3
		 WHERE account_id = $1 AND status <> $2`,
		accountID, string(domain.StatusRevoked), at)
	return err
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
