package repository

import (
	"context"
	"time"

	"submitiq/backend/internal/account/domain"
)

// Repository defines persistence for accounts (the UserStore contract).
// Implementations return (nil, nil) for missing rows; errors are storage
// failures only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// GetByIdentifier looks an account up by email (the login identifier).
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	// SetApprovalStatus records an approval decision for a still-Pending
	// account and reports whether the write applied. A false return means the
	// account was missing or already decided, so of two racing administrators
	// only one gets true. isActive must be kept in lockstep with status:
	// Accepted activates, Rejected deactivates.
	SetApprovalStatus(ctx context.Context, id string, status domain.ApprovalStatus, isActive bool, decidedBy string, at time.Time) (bool, error)
	// ListByStatus returns accounts in the given approval state, newest first.
	ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error
}
