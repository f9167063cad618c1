package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"submitiq/backend/internal/account/domain"
)

// MemoryRepository is an in-memory Repository used in tests and local
// development. Accounts are copied in and out so callers cannot mutate the
// store through returned pointers.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Account
}

// NewMemoryRepository returns an empty in-memory account repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Account)}
}

// GetByID returns the account for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// GetByIdentifier returns the account with the given email, or nil.
func (r *MemoryRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.m {
		if a.Email == identifier {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

// Create stores the account. Duplicate ids or emails fail.
func (r *MemoryRepository) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[a.ID]; ok {
		return errors.New("duplicate account id")
	}
	for _, existing := range r.m {
		if existing.Email == a.Email {
			return errors.New("duplicate email")
		}
	}
	r.m[a.ID] = *a
	return nil
}

// SetApprovalStatus records an approval decision if the account is still
// Pending, mirroring the Postgres compare-and-set.
func (r *MemoryRepository) SetApprovalStatus(ctx context.Context, id string, status domain.ApprovalStatus, isActive bool, decidedBy string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok || a.Status != domain.StatusPending {
		return false, nil
	}
	a.Status = status
	a.IsActive = isActive
	a.DecidedBy = decidedBy
	a.UpdatedAt = at
	switch status {
	case domain.StatusAccepted:
		a.AcceptedAt = &at
	case domain.StatusRejected:
		a.RejectedAt = &at
	}
	r.m[id] = a
	return true, nil
}

// ListByStatus returns accounts in the given state, newest first.
func (r *MemoryRepository) ListByStatus(ctx context.Context, status domain.ApprovalStatus) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Account
	for _, a := range r.m {
		if a.Status == status {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdatePasswordHash stores a new credential hash.
func (r *MemoryRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok {
		return errors.New("no such account")
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = at
	r.m[id] = a
	return nil
}
