package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"submitiq/backend/internal/ratelimit"
)

// RateLimitByIP throttles requests per client IP. Intended for the
// unauthenticated auth endpoints where credential stuffing originates.
func RateLimitByIP(limiter *ratelimit.Limiter, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !limiter.Allow(ip) {
				log.WithFields(logrus.Fields{"ip": ip, "path": r.URL.Path}).Warn("rate limit exceeded")
				writeTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByAccount throttles authenticated requests per account. Must run
// after the gateway so the principal is in context; requests without one fall
// back to the client IP.
func RateLimitByAccount(limiter *ratelimit.Limiter, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if p, ok := GetPrincipal(r.Context()); ok {
				key = p.AccountID
			}
			if !limiter.Allow(key) {
				log.WithFields(logrus.Fields{"key": key, "path": r.URL.Path}).Warn("rate limit exceeded")
				writeTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
}
