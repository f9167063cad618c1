package middleware

import (
	"context"

	accountdomain "submitiq/backend/internal/account/domain"
)

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// WithPrincipal returns a context carrying the authenticated principal.
// Handlers read it back via GetPrincipal.
func WithPrincipal(ctx context.Context, p accountdomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the principal from context and true if set; otherwise a zero Principal and false.
func GetPrincipal(ctx context.Context) (accountdomain.Principal, bool) {
	v, ok := ctx.Value(principalKey).(accountdomain.Principal)
	return v, ok
}

var clientIPKey = contextKey{"client_ip"}

// WithClientIP returns a context carrying the originating client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the client IP from context, or "" if not set.
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
