package repository

import (
	"context"
	"database/sql"

	"submitiq/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the entry.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, account_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, sql.NullString{String: e.AccountID, Valid: e.AccountID != ""},
		e.Action, e.Resource, e.IP, e.Metadata, e.CreatedAt)
	return err
}

// ListByAccount returns up to limit entries for the account, newest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, action, resource, ip, metadata, created_at
		 FROM audit_logs WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var (
			e         domain.AuditLog
			accountID sql.NullString
		)
		if err := rows.Scan(&e.ID, &accountID, &e.Action, &e.Resource, &e.IP, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		if accountID.Valid {
			e.AccountID = accountID.String
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
