package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"submitiq/backend/internal/session/domain"
)

// MemoryRepository is an in-memory Repository used in tests and local
// development. UpdateStatus has the same compare-and-set semantics as the
// Postgres implementation.
type MemoryRepository struct {
	mu sync.Mutex
	m  map[string]domain.Session
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Session)}
}

// GetByID returns the session for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Create stores the session. Duplicate ids fail.
func (r *MemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[s.ID]; ok {
		return errors.New("duplicate session id")
	}
	r.m[s.ID] = *s
	return nil
}

// UpdateStatus swaps status from -> to atomically. Returns false without
// error when the current status differs from `from`.
func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	s.LastRotatedAt = &at
	r.m[id] = s
	return true, nil
}

// Revoke unconditionally marks the session revoked.
func (r *MemoryRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return nil
	}
	s.Status = domain.StatusRevoked
	s.LastRotatedAt = &at
	r.m[id] = s
	return nil
}

// RevokeAllByAccount revokes every non-revoked session of the account.
func (r *MemoryRepository) RevokeAllByAccount(ctx context.Context, accountID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.m {
		if s.AccountID == accountID && s.Status != domain.StatusRevoked {
			s.Status = domain.StatusRevoked
			s.LastRotatedAt = &at
			r.m[id] = s
		}
	}
	return nil
}
