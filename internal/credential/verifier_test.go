package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"submitiq/backend/internal/account/domain"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/security"
)

type fakeStore struct {
	accounts map[string]*domain.Account
	err      error
}

func (s *fakeStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.accounts[identifier], nil
}

func newTestAccount(t *testing.T, hasher *security.Hasher, email, password string, active bool) *domain.Account {
	t.Helper()
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	status := domain.StatusAccepted
	if !active {
		status = domain.StatusPending
	}
	return &domain.Account{
		ID:           "acct-" + email,
		Name:         "Test",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCompany,
		Status:       status,
		IsActive:     active,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestVerify_Success(t *testing.T) {
	hasher := security.NewHasher(bcrypt.MinCost)
	acct := newTestAccount(t, hasher, "ops@acme.test", "a long password", true)
	v := NewVerifier(&fakeStore{accounts: map[string]*domain.Account{acct.Email: acct}}, hasher)

	p, err := v.Verify(context.Background(), "ops@acme.test", "a long password")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.AccountID != acct.ID {
		t.Errorf("AccountID = %q, want %q", p.AccountID, acct.ID)
	}
	if p.Role != domain.RoleCompany {
		t.Errorf("Role = %q", p.Role)
	}
	if !p.Active {
		t.Error("principal should be active")
	}
}

func TestVerify_NormalizesIdentifier(t *testing.T) {
	hasher := security.NewHasher(bcrypt.MinCost)
	acct := newTestAccount(t, hasher, "ops@acme.test", "a long password", true)
	v := NewVerifier(&fakeStore{accounts: map[string]*domain.Account{acct.Email: acct}}, hasher)

	if _, err := v.Verify(context.Background(), "  OPS@Acme.Test ", "a long password"); err != nil {
		t.Errorf("Verify with unnormalized identifier: %v", err)
	}
}

func TestVerify_UnknownAndWrongSecretLookIdentical(t *testing.T) {
	hasher := security.NewHasher(bcrypt.MinCost)
	acct := newTestAccount(t, hasher, "ops@acme.test", "a long password", true)
	v := NewVerifier(&fakeStore{accounts: map[string]*domain.Account{acct.Email: acct}}, hasher)

	_, errUnknown := v.Verify(context.Background(), "nobody@acme.test", "a long password")
	_, errWrong := v.Verify(context.Background(), "ops@acme.test", "wrong password")

	if !autherrors.IsKind(errUnknown, autherrors.KindInvalidCredentials) {
		t.Errorf("unknown identifier kind = %v", autherrors.KindOf(errUnknown))
	}
	if !autherrors.IsKind(errWrong, autherrors.KindInvalidCredentials) {
		t.Errorf("wrong secret kind = %v", autherrors.KindOf(errWrong))
	}
}

func TestVerify_EmptyInputs(t *testing.T) {
	v := NewVerifier(&fakeStore{}, security.NewHasher(bcrypt.MinCost))
	if _, err := v.Verify(context.Background(), "", "secret"); !autherrors.IsKind(err, autherrors.KindInvalidCredentials) {
		t.Errorf("empty identifier kind = %v", autherrors.KindOf(err))
	}
	if _, err := v.Verify(context.Background(), "ops@acme.test", ""); !autherrors.IsKind(err, autherrors.KindInvalidCredentials) {
		t.Errorf("empty secret kind = %v", autherrors.KindOf(err))
	}
}

func TestVerify_InactiveAccount(t *testing.T) {
	hasher := security.NewHasher(bcrypt.MinCost)
	acct := newTestAccount(t, hasher, "pending@acme.test", "a long password", false)
	v := NewVerifier(&fakeStore{accounts: map[string]*domain.Account{acct.Email: acct}}, hasher)

	_, err := v.Verify(context.Background(), "pending@acme.test", "a long password")
	if !autherrors.IsKind(err, autherrors.KindAccountInactive) {
		t.Errorf("kind = %v, want AccountInactive", autherrors.KindOf(err))
	}
}

func TestVerify_StorageFailure(t *testing.T) {
	boom := errors.New("connection refused")
	v := NewVerifier(&fakeStore{err: boom}, security.NewHasher(bcrypt.MinCost))

	_, err := v.Verify(context.Background(), "ops@acme.test", "secret")
	if !autherrors.IsKind(err, autherrors.KindStorageUnavailable) {
		t.Errorf("kind = %v, want StorageUnavailable", autherrors.KindOf(err))
	}
	if !errors.Is(err, boom) {
		t.Error("cause should be preserved")
	}
}
