// Package audit records security-relevant actions. Writing is best-effort:
// an audit failure never fails the operation being audited.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"submitiq/backend/internal/audit/domain"
	auditrepo "submitiq/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Logger writes a single audit entry with explicit action/resource. Used by
// the auth, token, and approval code paths.
type Logger interface {
	LogEvent(ctx context.Context, accountID, action, resource, metadata string)
}

// RepoLogger implements Logger on top of the audit repository.
type RepoLogger struct {
	repo        auditrepo.Repository
	log         *logrus.Logger
	ipExtractor IPExtractor
}

// NewLogger returns a Logger that persists to repo and uses ipExtractor for
// the client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, log *logrus.Logger, ipExtractor IPExtractor) *RepoLogger {
	return &RepoLogger{repo: repo, log: log, ipExtractor: ipExtractor}
}

// LogEvent writes one audit entry. Errors are logged and not returned.
func (l *RepoLogger) LogEvent(ctx context.Context, accountID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}

// Nop is a Logger that discards everything. Useful in tests and in binaries
// that have no database.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string) {}
