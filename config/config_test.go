package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cfg.Sanitize(); err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Errorf("Redis.URI = %q, want localhost:6379", cfg.Redis.URI)
	}
	if cfg.Auth.TokenTTL != 8*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 8h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.SeedAdminEmail != "admin@admin.com" {
		t.Errorf("Auth.SeedAdminEmail = %q", cfg.Auth.SeedAdminEmail)
	}
}

func TestAuthSanitize(t *testing.T) {
	longSecret := "0123456789abcdef0123456789abcdef"

	tests := []struct {
		name    string
		cfg     AuthConfig
		isDev   bool
		wantErr bool
		wantTTL time.Duration
	}{
		{
			name:    "valid secret and ttl untouched",
			cfg:     AuthConfig{JWTSecret: longSecret, TokenTTL: 8 * time.Hour},
			wantTTL: 8 * time.Hour,
		},
		{
			name:    "short secret rejected in production",
			cfg:     AuthConfig{JWTSecret: "short", TokenTTL: time.Hour},
			wantErr: true,
		},
		{
			name:    "missing secret rejected in production",
			cfg:     AuthConfig{TokenTTL: time.Hour},
			wantErr: true,
		},
		{
			name:    "missing secret replaced in dev",
			cfg:     AuthConfig{TokenTTL: time.Hour},
			isDev:   true,
			wantTTL: time.Hour,
		},
		{
			name:    "ttl clamped low",
			cfg:     AuthConfig{JWTSecret: longSecret, TokenTTL: time.Second},
			wantTTL: 5 * time.Minute,
		},
		{
			name:    "ttl clamped high",
			cfg:     AuthConfig{JWTSecret: longSecret, TokenTTL: 72 * time.Hour},
			wantTTL: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Sanitize(tt.isDev)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.cfg.TokenTTL != tt.wantTTL {
				t.Errorf("TokenTTL = %v, want %v", tt.cfg.TokenTTL, tt.wantTTL)
			}
			if len(tt.cfg.JWTSecret) < minJWTSecretLen {
				t.Errorf("sanitized secret still too short")
			}
		})
	}
}

func TestHTTPSanitize(t *testing.T) {
	h := HTTPConfig{}
	h.Sanitize()
	if h.ReadTimeout <= 0 || h.WriteTimeout <= 0 || h.ShutdownTimeout <= 0 {
		t.Errorf("timeouts not defaulted: %+v", h)
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.detectDevMode()
	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}
}
