package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	accountdomain "submitiq/backend/internal/account/domain"
	"submitiq/backend/internal/approval"
	"submitiq/backend/internal/autherrors"
	"submitiq/backend/internal/token"
)

const bearerPrefix = "bearer "

// Gateway authenticates inbound HTTP requests from the Authorization header.
// Every failure collapses to a generic 401 on the wire; the precise reason is
// only logged server-side.
type Gateway struct {
	tokens     *token.Service
	workflow   *approval.Workflow
	revalidate bool
	log        *logrus.Logger
}

// NewGateway returns a Gateway. When revalidate is true the gateway re-checks
// the account's approval state on every request instead of trusting the token
// for its remaining lifetime.
func NewGateway(tokens *token.Service, workflow *approval.Workflow, revalidate bool, log *logrus.Logger) *Gateway {
	return &Gateway{tokens: tokens, workflow: workflow, revalidate: revalidate, log: log}
}

// Authenticate validates the raw Authorization header value and returns the
// principal. The error's kind distinguishes missing, malformed, expired,
// blacklisted, and inactive-account failures.
func (g *Gateway) Authenticate(ctx context.Context, header string) (accountdomain.Principal, error) {
	raw := extractBearer(header)
	if raw == "" {
		return accountdomain.Principal{}, autherrors.E(autherrors.KindMissingToken, "no bearer token")
	}
	principal, err := g.tokens.VerifyAccess(ctx, raw)
	if err != nil {
		return accountdomain.Principal{}, err
	}
	if g.revalidate {
		active, err := g.workflow.CheckActive(ctx, principal.AccountID)
		if err != nil {
			return accountdomain.Principal{}, err
		}
		if !active {
			return accountdomain.Principal{}, autherrors.E(autherrors.KindAccountInactive, "account no longer active")
		}
	}
	return *principal, nil
}

// Require wraps a handler so only authenticated requests reach it. The
// principal is placed in the request context.
func (g *Gateway) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			g.log.WithFields(logrus.Fields{
				"kind": string(autherrors.KindOf(err)),
				"path": r.URL.Path,
				"ip":   ClientIP(r),
			}).Info("request rejected")
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
