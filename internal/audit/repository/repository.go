package repository

import (
	"context"

	"submitiq/backend/internal/audit/domain"
)

// Repository defines persistence for audit log entries.
type Repository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditLog, error)
}
