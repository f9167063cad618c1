package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. Used in tests and single-process setups
// where blacklist durability across restarts is not required.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]time.Time
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory blacklist store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]time.Time),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Add records the signature hash until expiresAt.
func (s *MemoryStore) Add(ctx context.Context, signatureHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[signatureHash]; !ok || expiresAt.After(cur) {
		s.m[signatureHash] = expiresAt
	}
	return nil
}

// Contains reports membership. Entries past expiry are treated as absent even
// before a prune cycle runs.
func (s *MemoryStore) Contains(ctx context.Context, signatureHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.m[signatureHash]
	if !ok {
		return false, nil
	}
	return exp.After(s.nowF()), nil
}

// Prune removes expired entries and returns the number removed.
func (s *MemoryStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, exp := range s.m {
		if !exp.After(now) {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}
