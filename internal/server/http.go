// Package server assembles the HTTP router: public auth routes behind the
// per-IP limiter, everything else behind the gateway and per-account limiter.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	accounthandler "submitiq/backend/internal/account/handler"
	"submitiq/backend/internal/health"
	identityhandler "submitiq/backend/internal/identity/handler"
	"submitiq/backend/internal/ratelimit"
	"submitiq/backend/internal/server/middleware"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth      *identityhandler.AuthHandler
	Approvals *accounthandler.ApprovalHandler
	Health    *health.Handler
	Gateway   *middleware.Gateway
	AnonLimit *ratelimit.Limiter
	AuthLimit *ratelimit.Limiter
	Log       *logrus.Logger
}

// NewRouter builds the full route tree.
func NewRouter(d Deps) http.Handler {
	root := mux.NewRouter()
	root.Use(mux.MiddlewareFunc(middleware.InjectClientIP))

	d.Health.Register(root)

	public := root.PathPrefix("/").Subrouter()
	public.Use(middleware.RateLimitByIP(d.AnonLimit, d.Log))
	d.Auth.RegisterPublic(public)

	protected := root.PathPrefix("/").Subrouter()
	protected.Use(mux.MiddlewareFunc(d.Gateway.Require))
	protected.Use(middleware.RateLimitByAccount(d.AuthLimit, d.Log))
	d.Auth.RegisterProtected(protected)
	d.Approvals.Register(protected)

	return otelhttp.NewHandler(root, "http.server")
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
