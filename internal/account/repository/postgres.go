package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"submitiq/backend/internal/account/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, role, status, is_active,
	accepted_at, rejected_at, decided_by, created_at, updated_at`

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByIdentifier returns the account with the given email, or nil if not found.
func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, identifier)
	return scanAccount(row)
}

// Create persists the account. The account must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.Name, a.Email, a.PasswordHash, string(a.Role), string(a.Status), a.IsActive,
		timeToNullTime(a.AcceptedAt), timeToNullTime(a.RejectedAt),
		sql.NullString{String: a.DecidedBy, Valid: a.DecidedBy != ""},
		a.CreatedAt, a.UpdatedAt)
	return err
}

// SetApprovalStatus records the approval decision and matching activity flag.
// The WHERE clause on the Pending status is the compare-and-set that keeps two
// racing administrators from both deciding the same account.
func (r *PostgresRepository) SetApprovalStatus(ctx context.Context, id string, status domain.ApprovalStatus, isActive bool, decidedBy string, at time.Time) (bool, error) {
	accepted := sql.NullTime{}
	rejected := sql.NullTime{}
	switch status {
	case domain.StatusAccepted:
		accepted = sql.NullTime{Time: at, Valid: true}
	case domain.StatusRejected:
		rejected = sql.NullTime{Time: at, Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET status = $2, is_active = $3, accepted_at = $4, rejected_at = $5, decided_by = $6, updated_at = $7
		 WHERE id = $1 AND status = $8`,
		id, string(status), isActive, accepted, rejected,
		sql.NullString{String: decidedBy, Valid: decidedBy != ""}, at,
		string(domain.StatusPending))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByStatus returns accounts in the given approval state, newest first.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE status = $1 ORDER BY created_at DESC`,
		string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a         domain.Account
		role      string
		status    string
		accepted  sql.NullTime
		rejected  sql.NullTime
		decidedBy sql.NullString
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role, &status, &a.IsActive,
		&accepted, &rejected, &decidedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.Role = domain.Role(role)
	a.Status = domain.ApprovalStatus(status)
	a.AcceptedAt = nullTimeToPtr(accepted)
	a.RejectedAt = nullTimeToPtr(rejected)
	if decidedBy.Valid {
		a.DecidedBy = decidedBy.String
	}
	return &a, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
