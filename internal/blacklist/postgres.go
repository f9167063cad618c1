package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a blacklist store backed by the token_blacklist table.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add records the signature hash until expiresAt. Re-adding an existing hash
// keeps the later expiry.
func (s *PostgresStore) Add(ctx context.Context, signatureHash string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token_blacklist (signature_hash, expires_at)
		 VALUES ($1, $2)
		 ON CONFLICT (signature_hash)
		 DO UPDATE SET expires_at = GREATEST(token_blacklist.expires_at, EXCLUDED.expires_at)`,
		signatureHash, expiresAt)
	return err
}

// Contains reports membership of the signature hash.
func (s *PostgresStore) Contains(ctx context.Context, signatureHash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM token_blacklist WHERE signature_hash = $1`, signatureHash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Prune deletes expired entries and returns the number removed.
func (s *PostgresStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
