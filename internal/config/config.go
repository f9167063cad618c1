// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSigningKeys is a comma-separated list of kid=path entries, each path
	// pointing to a PEM private key (RSA or ECDSA). All listed keys verify;
	// only JWT_ACTIVE_KID signs newly issued tokens.
	JWTSigningKeys string `mapstructure:"JWT_SIGNING_KEYS"`
	// JWTActiveKid selects the signing key from JWT_SIGNING_KEYS.
	JWTActiveKid string `mapstructure:"JWT_ACTIVE_KID"`
	// JWTIssuer is the iss claim (e.g. "submitiq-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "submitiq-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "10m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "24h"). Also bounds session lifetime.
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// PasswordMinLength is the minimum accepted password length; default 12.
	PasswordMinLength int `mapstructure:"PASSWORD_MIN_LENGTH"`
	// ReuseStrictness controls refresh fingerprint matching: "strict", "agent", or "off".
	ReuseStrictness string `mapstructure:"REUSE_STRICTNESS"`
	// RevalidateApproval re-checks account approval on every authenticated
	// request instead of trusting the token for its lifetime. Default true.
	RevalidateApproval bool `mapstructure:"REVALIDATE_APPROVAL"`
	// BlacklistPruneSchedule is a cron expression for expired-entry cleanup (default hourly).
	BlacklistPruneSchedule string `mapstructure:"BLACKLIST_PRUNE_SCHEDULE"`
	// AnonRatePerMin caps unauthenticated requests per client IP per minute. 0 disables.
	AnonRatePerMin int `mapstructure:"ANON_RATE_PER_MIN"`
	// AuthRatePerMin caps authenticated requests per account per minute. 0 disables.
	AuthRatePerMin int `mapstructure:"AUTH_RATE_PER_MIN"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Events (optional). When Kafka brokers are set, the server emits security events to Kafka.
	// KafkaBrokers is a comma-separated list of broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaTopic is the Kafka topic for security events (default submitiq-security).
	KafkaTopic string `mapstructure:"SECURITY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SIGNING_KEYS", "")
	v.SetDefault("JWT_ACTIVE_KID", "")
	v.SetDefault("JWT_ISSUER", "submitiq-auth")
	v.SetDefault("JWT_AUDIENCE", "submitiq-api")
	v.SetDefault("JWT_ACCESS_TTL", "10m")
	v.SetDefault("JWT_REFRESH_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("PASSWORD_MIN_LENGTH", 12)
	v.SetDefault("REUSE_STRICTNESS", "strict")
	v.SetDefault("REVALIDATE_APPROVAL", true)
	v.SetDefault("BLACKLIST_PRUNE_SCHEDULE", "@hourly")
	v.SetDefault("ANON_RATE_PER_MIN", 30)
	v.SetDefault("AUTH_RATE_PER_MIN", 300)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("SECURITY_KAFKA_TOPIC", "submitiq-security")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "submitiq-event-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.JWTSigningKeys != "" {
		if _, err := cfg.SigningKeyPaths(); err != nil {
			return nil, err
		}
	}

	switch cfg.ReuseStrictness {
	case "", "strict", "agent", "off":
	default:
		return nil, fmt.Errorf("config: REUSE_STRICTNESS must be strict, agent, or off, got %q", cfg.ReuseStrictness)
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// SigningKeyPaths parses JWT_SIGNING_KEYS into kid -> PEM file path.
// Returns an error on malformed entries or duplicate kids.
func (c *Config) SigningKeyPaths() (map[string]string, error) {
	if c == nil || c.JWTSigningKeys == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, entry := range strings.Split(c.JWTSigningKeys, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kid, path, ok := strings.Cut(entry, "=")
		kid, path = strings.TrimSpace(kid), strings.TrimSpace(path)
		if !ok || kid == "" || path == "" {
			return nil, fmt.Errorf("config: JWT_SIGNING_KEYS entry %q is not kid=path", entry)
		}
		if _, dup := out[kid]; dup {
			return nil, fmt.Errorf("config: JWT_SIGNING_KEYS has duplicate kid %q", kid)
		}
		out[kid] = path
	}
	if len(out) == 0 {
		return nil, errors.New("config: JWT_SIGNING_KEYS has no usable entries")
	}
	return out, nil
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
