// Package credential checks presented identifier+secret pairs against the
// account store.
package credential

import (
	"context"
	"strings"

	"submitiq/backend/internal/account/domain"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/security"
)

// Store is the minimal account lookup needed by the verifier.
type Store interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
}

// Verifier authenticates identifier+secret pairs.
type Verifier struct {
	store  Store
	hasher *security.Hasher
}

// NewVerifier returns a Verifier backed by the given account store.
func NewVerifier(store Store, hasher *security.Hasher) *Verifier {
	return &Verifier{store: store, hasher: hasher}
}

// Verify authenticates the pair and returns a Principal snapshot. An unknown
// identifier and a wrong secret both fail with KindInvalidCredentials; the
// caller can never tell which it was. An account that exists but is not
// active (Pending or Rejected alike) fails with KindAccountInactive.
func (v *Verifier) Verify(ctx context.Context, identifier, secret string) (*domain.Principal, error) {
	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if identifier == "" || secret == "" {
		return nil, autherrors.E(autherrors.KindInvalidCredentials, "empty identifier or secret")
	}
	acct, err := v.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if acct == nil || acct.PasswordHash == "" {
		return nil, autherrors.E(autherrors.KindInvalidCredentials, "unknown identifier")
	}
	if err := v.hasher.Compare(acct.PasswordHash, []byte(secret)); err != nil {
		return nil, autherrors.E(autherrors.KindInvalidCredentials, "secret mismatch")
	}
	if !acct.IsActive {
		return nil, autherrors.E(autherrors.KindAccountInactive, "account not active")
	}
	return &domain.Principal{
		AccountID: acct.ID,
		Role:      acct.Role,
		Active:    acct.IsActive,
	}, nil
}
