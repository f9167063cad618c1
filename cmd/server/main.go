// Server runs the authentication and approval HTTP API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	accounthandler "submitiq/backend/internal/account/handler"
	accountrepo "submitiq/backend/internal/account/repository"
	"submitiq/backend/internal/approval"
	"submitiq/backend/internal/audit"
	auditrepo "submitiq/backend/internal/audit/repository"
	"submitiq/backend/internal/blacklist"
	"submitiq/backend/internal/config"
	"submitiq/backend/internal/credential"
	"submitiq/backend/internal/db"
	"submitiq/backend/internal/event"
	"submitiq/backend/internal/health"
	identityhandler "submitiq/backend/internal/identity/handler"
	identityservice "submitiq/backend/internal/identity/service"
	"submitiq/backend/internal/ratelimit"
	"submitiq/backend/internal/security"
	sessionrepo "submitiq/backend/internal/session/repository"
	"submitiq/backend/internal/server"
	"submitiq/backend/internal/server/middleware"
	"submitiq/backend/internal/telemetry/otel"
	"submitiq/backend/internal/token"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := otel.NewProviders(ctx,
		os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		"submitiq-auth",
		os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
	)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		_ = providers.Shutdown(shutdownCtx)
	}()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	keyring, err := buildKeyring(cfg, log)
	if err != nil {
		log.Fatalf("signing keys: %v", err)
	}
	tokens := security.NewTokenProvider(keyring, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	accounts := accountrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresRepository(pool)
	blacklistStore := blacklist.NewPostgresStore(pool)
	auditStore := auditrepo.NewPostgresRepository(pool)

	auditor := audit.NewLogger(auditStore, log, middleware.GetClientIP)

	var events event.Producer
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		events, err = event.NewKafkaProducer(brokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
	} else {
		events = otel.NewEventEmitter(providers.LoggerProvider)
	}
	defer func() { _ = events.Close() }()

	strictness, err := token.ParseStrictness(cfg.ReuseStrictness)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	verifier := credential.NewVerifier(accounts, hasher)
	workflow := approval.NewWorkflow(accounts, auditor, events)
	tokenService := token.NewService(sessions, blacklistStore, accounts,
		tokens, token.NewReuseGuard(strictness), auditor, events, log)
	authService := identityservice.NewAuthService(accounts, verifier, workflow,
		tokenService, hasher, auditor, events, log, cfg.PasswordMinLength)

	pruner := blacklist.NewPruner(blacklistStore, log)
	if err := pruner.Start(cfg.BlacklistPruneSchedule); err != nil {
		log.Fatalf("blacklist pruner: %v", err)
	}
	defer pruner.Stop()

	anonLimit := ratelimit.New(cfg.AnonRatePerMin)
	authLimit := ratelimit.New(cfg.AuthRatePerMin)
	go anonLimit.SweepEvery(ctx, time.Minute)
	go authLimit.SweepEvery(ctx, time.Minute)

	gateway := middleware.NewGateway(tokenService, workflow, cfg.RevalidateApproval, log)
	router := server.NewRouter(server.Deps{
		Auth:      identityhandler.NewAuthHandler(authService, log),
		Approvals: accounthandler.NewApprovalHandler(workflow, log),
		Health:    health.NewHandler(pool),
		Gateway:   gateway,
		AnonLimit: anonLimit,
		AuthLimit: authLimit,
		Log:       log,
	})

	srv := server.NewHTTPServer(cfg.HTTPAddr, router)
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down HTTP server...")
	shutdownCtx, c := context.WithTimeout(context.Background(), 10*time.Second)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	log.Info("HTTP server stopped")
}

func buildKeyring(cfg *config.Config, log *logrus.Logger) (*security.Keyring, error) {
	paths, err := cfg.SigningKeyPaths()
	if err != nil {
		return nil, err
	}
	keys := make([]security.SigningKey, 0, len(paths))
	for kid, path := range paths {
		signer, err := security.ParsePrivateKey(path)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"kid": kid,
			"alg": security.KeyAlg(signer.Public()),
		}).Info("signing key loaded")
		keys = append(keys, security.SigningKey{ID: kid, Private: signer})
	}
	return security.NewKeyring(cfg.JWTActiveKid, keys)
}
