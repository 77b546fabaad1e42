package config

import (
	"errors"
	"time"
)

const (
	minJWTSecretLen = 32

	minTokenTTL = 5 * time.Minute
	maxTokenTTL = 24 * time.Hour
)

// ErrJWTSecretTooShort is returned by Sanitize when AUTH_JWT_SECRET is
// missing or shorter than 32 bytes. HS256 with a short secret is
// brute-forceable, so short secrets are rejected outright.
var ErrJWTSecretTooShort = errors.New("config: AUTH_JWT_SECRET must be at least 32 bytes")

// AuthConfig groups authentication-related configuration.
type AuthConfig struct {
	// JWTSecret signs bearer tokens (HS256). Required, minimum 32 bytes.
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	// TokenTTL is the lifetime of issued tokens and their backing
	// sessions. Clamped to [5m, 24h] by Sanitize.
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"8h"`

	// Seed admin identity used by `progress-admin seed-admin` and by
	// dev-mode startup seeding. Never consulted on the request path.
	SeedAdminName     string `env:"AUTH_SEED_ADMIN_NAME"     envDefault:"Administrador"`
	SeedAdminEmail    string `env:"AUTH_SEED_ADMIN_EMAIL"    envDefault:"admin@admin.com"`
	SeedAdminPassword string `env:"AUTH_SEED_ADMIN_PASSWORD" envDefault:"admin123"`
}

// Sanitize applies guardrails to authentication configuration.
// In dev mode a missing secret is replaced with a fixed development
// value so the server starts without ceremony; in production a short
// or missing secret is a hard error.
func (a *AuthConfig) Sanitize(isDev bool) error {
	if len(a.JWTSecret) < minJWTSecretLen {
		if !isDev {
			return ErrJWTSecretTooShort
		}
		a.JWTSecret = "progress-dev-secret-do-not-use-in-production"
	}

	if a.TokenTTL < minTokenTTL {
		a.TokenTTL = minTokenTTL
	}
	if a.TokenTTL > maxTokenTTL {
		a.TokenTTL = maxTokenTTL
	}
	return nil
}
