package repository

import (
	"context"
	"time"

	"submitiq/backend/internal/session/domain"
)

// Repository defines persistence for sessions. Implementations return
// (nil, nil) for missing rows; errors are storage failures only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// UpdateStatus is an atomic compare-and-set on the session status. It
	// reports whether the swap happened; false means another writer got there
	// first (or the session is gone). Rotation correctness depends on this.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error)
	// Revoke unconditionally marks the session revoked.
	Revoke(ctx context.Context, id string, at time.Time) error
	// RevokeAllByAccount revokes every non-revoked session of the account.
	RevokeAllByAccount(ctx context.Context, accountID string, at time.Time) error
}
