// Package blacklist stores revoked-but-not-yet-expired token signatures.
// Membership is checked on every verified request; entries become worthless
// once the token would have expired anyway, so they are pruned.
package blacklist

import (
	"context"
	"time"
)

// Store defines the blacklist contract. Keys are SHA-256 hashes of the token
// signature segment, so rotating the signing key does not invalidate entries.
type Store interface {
	Add(ctx context.Context, signatureHash string, expiresAt time.Time) error
	Contains(ctx context.Context, signatureHash string) (bool, error)
	// Prune removes entries whose expiry is at or before now and returns how
	// many were removed.
	Prune(ctx context.Context, now time.Time) (int64, error)
}
