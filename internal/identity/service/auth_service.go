// Package service implements the transport-agnostic operation surface:
// register, login, refresh, logout, and password change.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	accountdomain "submitiq/backend/internal/account/domain"
	accountrepo "submitiq/backend/internal/account/repository"
	"submitiq/backend/internal/approval"
	"submitiq/backend/internal/audit"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/credential"
	"submitiq/backend/internal/event"
	"submitiq/backend/internal/security"
	sessiondomain "submitiq/backend/internal/session/domain"
	"submitiq/backend/internal/token"
)

// Sentinel errors for registration input problems; handlers map them to 400s.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidEmail           = errors.New("invalid email format")
	ErrWeakPassword           = errors.New("password does not meet the minimum length")
)

// AuthService composes the credential verifier, approval workflow, and token
// service behind the public operations.
type AuthService struct {
	accounts    accountrepo.Repository
	verifier    *credential.Verifier
	workflow    *approval.Workflow
	tokens      *token.Service
	hasher      *security.Hasher
	auditor     audit.Logger
	events      event.Producer
	log         *logrus.Logger
	passwordMin int
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	accounts accountrepo.Repository,
	verifier *credential.Verifier,
	workflow *approval.Workflow,
	tokens *token.Service,
	hasher *security.Hasher,
	auditor audit.Logger,
	events event.Producer,
	log *logrus.Logger,
	passwordMin int,
) *AuthService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	if events == nil {
		events = event.NopProducer{}
	}
	if passwordMin <= 0 {
		passwordMin = 12
	}
	return &AuthService{
		accounts:    accounts,
		verifier:    verifier,
		workflow:    workflow,
		tokens:      tokens,
		hasher:      hasher,
		auditor:     auditor,
		events:      events,
		log:         log,
		passwordMin: passwordMin,
	}
}

// Register creates a company account in the Pending state. The account stays
// inactive until an Administrator approves it; registration never issues
// tokens.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*accountdomain.Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < s.passwordMin {
		return nil, fmt.Errorf("%w (%d characters)", ErrWeakPassword, s.passwordMin)
	}
	existing, err := s.accounts.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	acct := &accountdomain.Account{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         accountdomain.RoleCompany,
		Status:       accountdomain.StatusPending,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := acct.Validate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, autherrors.Storage(err)
	}
	s.auditor.LogEvent(ctx, acct.ID, "auth.register", acct.ID, "")
	return acct, nil
}

// Login verifies credentials, re-checks account activity through the approval
// workflow, and issues a token pair bound to the request fingerprint.
func (s *AuthService) Login(ctx context.Context, identifier, secret string, fp sessiondomain.Fingerprint) (*token.Pair, *accountdomain.Principal, error) {
	principal, err := s.verifier.Verify(ctx, identifier, secret)
	if err != nil {
		s.onLoginFailure(ctx, identifier, fp, err)
		return nil, nil, err
	}
	active, err := s.workflow.CheckActive(ctx, principal.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if !active {
		err := autherrors.E(autherrors.KindAccountInactive, "account not active")
		s.onLoginFailure(ctx, identifier, fp, err)
		return nil, nil, err
	}
	pair, err := s.tokens.Issue(ctx, *principal, fp)
	if err != nil {
		return nil, nil, err
	}
	principal.SessionID = pair.SessionID
	s.auditor.LogEvent(ctx, principal.AccountID, "auth.login", pair.SessionID, "")
	return pair, principal, nil
}

// Refresh rotates the refresh token; see token.Service.Rotate for the
// semantics on reuse and races.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, fp sessiondomain.Fingerprint) (*token.Pair, error) {
	return s.tokens.Rotate(ctx, refreshToken, fp)
}

// Logout revokes the principal's session and blacklists the still-live
// tokens the client presented.
func (s *AuthService) Logout(ctx context.Context, principal accountdomain.Principal, accessToken, refreshToken string) error {
	if principal.SessionID == "" {
		return autherrors.E(autherrors.KindSessionNotFound, "no session on principal")
	}
	if err := s.tokens.Revoke(ctx, principal.SessionID, accessToken, refreshToken); err != nil {
		return err
	}
	s.auditor.LogEvent(ctx, principal.AccountID, "auth.logout", principal.SessionID, "")
	return nil
}

// ChangePassword verifies the old secret, stores the new hash, and force-logs
// the account out everywhere. Every session dies so a stolen refresh token
// does not outlive the credential it was obtained with.
func (s *AuthService) ChangePassword(ctx context.Context, principal accountdomain.Principal, oldSecret, newSecret string) error {
	if len(newSecret) < s.passwordMin {
		return fmt.Errorf("%w (%d characters)", ErrWeakPassword, s.passwordMin)
	}
	if oldSecret == newSecret {
		return errors.New("new password must differ from the current one")
	}
	acct, err := s.accounts.GetByID(ctx, principal.AccountID)
	if err != nil {
		return autherrors.Storage(err)
	}
	if acct == nil {
		return autherrors.E(autherrors.KindNotFound, "no such account")
	}
	if err := s.hasher.Compare(acct.PasswordHash, []byte(oldSecret)); err != nil {
		return autherrors.E(autherrors.KindInvalidCredentials, "current password mismatch")
	}
	hashed, err := s.hasher.Hash([]byte(newSecret))
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, acct.ID, hashed, time.Now().UTC()); err != nil {
		return autherrors.Storage(err)
	}
	s.auditor.LogEvent(ctx, acct.ID, "auth.password_change", acct.ID, "")
	return s.tokens.RevokeAllForAccount(ctx, acct.ID, "password change")
}

func (s *AuthService) onLoginFailure(ctx context.Context, identifier string, fp sessiondomain.Fingerprint, cause error) {
	kind := string(autherrors.KindOf(cause))
	s.auditor.LogEvent(ctx, "", "auth.login_failure", "", kind)
	_ = s.events.Emit(ctx, &event.SecurityEvent{
		ID:        uuid.New().String(),
		EventType: event.TypeLoginFailure,
		IP:        fp.IP,
		Agent:     fp.Agent,
		Detail:    kind,
		Source:    "auth",
		CreatedAt: time.Now().UTC(),
	})
	s.log.WithFields(logrus.Fields{
		"identifier": identifier,
		"ip":         fp.IP,
		"kind":       kind,
	}).Warn("login failed")
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return ErrInvalidEmail
	}
	return nil
}
