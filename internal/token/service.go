// Package token issues, verifies, rotates, and revokes the access/refresh
// token pairs that gate every authenticated request.
package token

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	accountdomain "submitiq/backend/internal/account/domain"
	"submitiq/backend/internal/audit"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/blacklist"
	"submitiq/backend/internal/event"
	"submitiq/backend/internal/security"
	sessiondomain "submitiq/backend/internal/session/domain"
	sessionrepo "submitiq/backend/internal/session/repository"
)

// chainLimit caps the previous-session walk during chain revocation. A chain
// longer than this means the back-references loop, which should be impossible.
const chainLimit = 1000

// Pair is an issued access+refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	SessionID        string
}

// AccountStore is the minimal account read access the service needs for its
// own activity re-check at issuance. The check is deliberately not trusted
// from the caller.
type AccountStore interface {
	GetByID(ctx context.Context, id string) (*accountdomain.Account, error)
}

// Service owns the session ledger and the blacklist.
type Service struct {
	sessions  sessionrepo.Repository
	blacklist blacklist.Store
	accounts  AccountStore
	tokens    *security.TokenProvider
	guard     *ReuseGuard
	auditor   audit.Logger
	events    event.Producer
	log       *logrus.Logger
}

// NewService returns a token Service with the given collaborators.
func NewService(
	sessions sessionrepo.Repository,
	bl blacklist.Store,
	accounts AccountStore,
	tokens *security.TokenProvider,
	guard *ReuseGuard,
	auditor audit.Logger,
	events event.Producer,
	log *logrus.Logger,
) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	if events == nil {
		events = event.NopProducer{}
	}
	return &Service{
		sessions:  sessions,
		blacklist: bl,
		accounts:  accounts,
		tokens:    tokens,
		guard:     guard,
		auditor:   auditor,
		events:    events,
		log:       log,
	}
}

// Issue creates a fresh session bound to the request fingerprint and mints a
// token pair for the principal. The account's activity is re-read from the
// store here, whatever the caller already checked.
func (s *Service) Issue(ctx context.Context, p accountdomain.Principal, fp sessiondomain.Fingerprint) (*Pair, error) {
	acct, err := s.accounts.GetByID(ctx, p.AccountID)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if acct == nil || !acct.IsActive {
		return nil, autherrors.E(autherrors.KindAccountInactive, "account not active")
	}

	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:          uuid.New().String(),
		AccountID:   acct.ID,
		Status:      sessiondomain.StatusActive,
		IssuedIP:    fp.IP,
		IssuedAgent: fp.Agent,
		ExpiresAt:   now.Add(s.tokens.RefreshTTL()),
		CreatedAt:   now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, autherrors.Storage(err)
	}
	return s.mint(acct.ID, string(acct.Role), sess.ID)
}

// VerifyAccess checks an access token: signature, expiry, and blacklist
// membership. It returns the Principal reconstructed from claims; callers
// that care about approval staleness re-check activity themselves.
func (s *Service) VerifyAccess(ctx context.Context, tokenString string) (*accountdomain.Principal, error) {
	claims, err := s.tokens.ParseAccess(tokenString)
	if err != nil {
		return nil, err
	}
	listed, err := s.blacklist.Contains(ctx, security.SignatureHash(tokenString))
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if listed {
		return nil, autherrors.E(autherrors.KindBlacklisted, "access token blacklisted")
	}
	return &accountdomain.Principal{
		AccountID: claims.Subject,
		Role:      accountdomain.Role(claims.Role),
		SessionID: claims.SessionID,
		Active:    true,
	}, nil
}

// Rotate exchanges a refresh token for a new pair. The reuse check runs
// before any state changes; a mismatch revokes the whole session chain and
// returns KindSessionReuseDetected, which is a security event rather than a
// retryable failure. Concurrent rotations of one session are resolved by the
// status compare-and-set: the loser gets KindSessionAlreadyRotated.
func (s *Service) Rotate(ctx context.Context, refreshToken string, fp sessiondomain.Fingerprint) (*Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	sigHash := security.SignatureHash(refreshToken)
	listed, err := s.blacklist.Contains(ctx, sigHash)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if listed {
		return nil, autherrors.E(autherrors.KindBlacklisted, "refresh token blacklisted")
	}

	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if sess == nil {
		return nil, autherrors.E(autherrors.KindSessionNotFound, "no session for token")
	}
	if sess.Status != sessiondomain.StatusActive {
		return nil, autherrors.E(autherrors.KindSessionRevoked, "session no longer active")
	}

	if err := s.guard.Check(sess, fp); err != nil {
		s.onReuse(ctx, sess, fp, refreshToken, claims.ExpiresAt.Time)
		return nil, err
	}

	now := time.Now().UTC()
	swapped, err := s.sessions.UpdateStatus(ctx, sess.ID, sessiondomain.StatusActive, sessiondomain.StatusRotated, now)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if !swapped {
		return nil, autherrors.E(autherrors.KindSessionAlreadyRotated, "concurrent rotation won")
	}
	// The old refresh token must be dead on disk before the new pair leaves
	// this function; a crash in between costs the user a login, never a
	// second live refresh token for the same logical session.
	if err := s.blacklist.Add(ctx, sigHash, claims.ExpiresAt.Time); err != nil {
		return nil, autherrors.Storage(err)
	}

	acct, err := s.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		return nil, autherrors.Storage(err)
	}
	if acct == nil || !acct.IsActive {
		return nil, autherrors.E(autherrors.KindAccountInactive, "account not active")
	}

	next := &sessiondomain.Session{
		ID:          uuid.New().String(),
		AccountID:   sess.AccountID,
		Status:      sessiondomain.StatusActive,
		IssuedIP:    fp.IP,
		IssuedAgent: fp.Agent,
		PreviousID:  sess.ID,
		ExpiresAt:   now.Add(s.tokens.RefreshTTL()),
		CreatedAt:   now,
	}
	if err := s.sessions.Create(ctx, next); err != nil {
		return nil, autherrors.Storage(err)
	}
	return s.mint(acct.ID, string(acct.Role), next.ID)
}

// Revoke ends the session (logout). Any still-live tokens the caller presents
// are blacklisted so they are never honored again even though their
// signatures remain valid until natural expiry.
func (s *Service) Revoke(ctx context.Context, sessionID string, liveTokens ...string) error {
	now := time.Now().UTC()
	if err := s.sessions.Revoke(ctx, sessionID, now); err != nil {
		return autherrors.Storage(err)
	}
	for _, tok := range liveTokens {
		s.blacklistLive(ctx, tok)
	}
	return nil
}

// RevokeAllForAccount revokes every session of the account (forced logout:
// administrator action or password change). Already-minted access tokens stay
// cryptographically valid until expiry; the gateway's approval re-check and
// the short access TTL bound that window.
func (s *Service) RevokeAllForAccount(ctx context.Context, accountID, reason string) error {
	if err := s.sessions.RevokeAllByAccount(ctx, accountID, time.Now().UTC()); err != nil {
		return autherrors.Storage(err)
	}
	s.auditor.LogEvent(ctx, accountID, "auth.forced_logout", accountID, reason)
	_ = s.events.Emit(ctx, &event.SecurityEvent{
		ID:        uuid.New().String(),
		EventType: event.TypeForcedLogout,
		AccountID: accountID,
		Detail:    reason,
		Source:    "token",
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *Service) mint(accountID, role, sessionID string) (*Pair, error) {
	access, accessExp, err := s.tokens.IssueAccess(accountID, role, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(sessionID)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		SessionID:        sessionID,
	}, nil
}

// onReuse revokes the session and everything reachable through its
// previous-session back-references, and blacklists the presented token.
// Best-effort: the caller returns KindSessionReuseDetected regardless.
func (s *Service) onReuse(ctx context.Context, sess *sessiondomain.Session, fp sessiondomain.Fingerprint, refreshToken string, tokenExp time.Time) {
	now := time.Now().UTC()
	if err := s.blacklist.Add(ctx, security.SignatureHash(refreshToken), tokenExp); err != nil {
		s.log.WithError(err).Error("blacklist write during reuse handling failed")
	}

	cur := sess
	for i := 0; cur != nil && i < chainLimit; i++ {
		if err := s.sessions.Revoke(ctx, cur.ID, now); err != nil {
			s.log.WithError(err).WithField("session_id", cur.ID).Error("chain revocation failed")
			break
		}
		if cur.PreviousID == "" {
			break
		}
		prev, err := s.sessions.GetByID(ctx, cur.PreviousID)
		if err != nil {
			s.log.WithError(err).Error("chain walk failed")
			break
		}
		cur = prev
	}

	s.auditor.LogEvent(ctx, sess.AccountID, "auth.session_reuse_detected", sess.ID,
		"presented from "+fp.IP)
	_ = s.events.Emit(ctx, &event.SecurityEvent{
		ID:        uuid.New().String(),
		EventType: event.TypeReuseDetected,
		AccountID: sess.AccountID,
		SessionID: sess.ID,
		IP:        fp.IP,
		Agent:     fp.Agent,
		Source:    "token",
		CreatedAt: now,
	})
	s.log.WithFields(logrus.Fields{
		"account_id": sess.AccountID,
		"session_id": sess.ID,
		"ip":         fp.IP,
	}).Warn("refresh token reuse detected; session chain revoked")
}

// blacklistLive adds the token's signature to the blacklist if the token is
// still verifiable. Expired or malformed tokens need no entry.
func (s *Service) blacklistLive(ctx context.Context, tok string) {
	var exp time.Time
	if claims, err := s.tokens.ParseAccess(tok); err == nil {
		exp = claims.ExpiresAt.Time
	} else if claims, err := s.tokens.ParseRefresh(tok); err == nil {
		exp = claims.ExpiresAt.Time
	} else {
		return
	}
	if err := s.blacklist.Add(ctx, security.SignatureHash(tok), exp); err != nil {
		s.log.WithError(err).Warn("blacklist write on revoke failed")
	}
}
