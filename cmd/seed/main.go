// seed bootstraps the first Administrator account so the approval workflow
// has an operator. Set SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD, and optionally
// SEED_ADMIN_NAME. Idempotent: an existing account with that email is left alone.
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	accountdomain "submitiq/backend/internal/account/domain"
	accountrepo "submitiq/backend/internal/account/repository"
	"submitiq/backend/internal/config"
	"submitiq/backend/internal/db"
	"submitiq/backend/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("seed: DATABASE_URL is required")
	}

	email := strings.TrimSpace(strings.ToLower(os.Getenv("SEED_ADMIN_EMAIL")))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	name := os.Getenv("SEED_ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}
	if email == "" || password == "" {
		log.Fatal("seed: SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}
	if len(password) < cfg.PasswordMinLength {
		log.Fatalf("seed: SEED_ADMIN_PASSWORD must be at least %d characters", cfg.PasswordMinLength)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	accounts := accountrepo.NewPostgresRepository(pool)

	existing, err := accounts.GetByIdentifier(ctx, email)
	if err != nil {
		log.Fatalf("seed: lookup: %v", err)
	}
	if existing != nil {
		log.Printf("seed: account %s already exists (%s), nothing to do", email, existing.Role)
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		log.Fatalf("seed: hash: %v", err)
	}

	now := time.Now().UTC()
	admin := &accountdomain.Account{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         accountdomain.RoleAdministrator,
		Status:       accountdomain.StatusAccepted,
		IsActive:     true,
		AcceptedAt:   &now,
		DecidedBy:    "seed",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := accounts.Create(ctx, admin); err != nil {
		log.Fatalf("seed: create: %v", err)
	}
	log.Printf("seed: created Administrator %s (%s)", email, admin.ID)
}
