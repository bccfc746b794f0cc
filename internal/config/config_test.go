package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "p@ss word")
	t.Setenv("WORKER_POLL_MS", "")

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("env = %q, want dev", cfg.Env)
	}
	if cfg.DBURL != "postgres://campushub:p%40ss%20word@db:5432/campushub?sslmode=disable" {
		t.Fatalf("unexpected db url: %s", cfg.DBURL)
	}
	if cfg.WorkerPollInterval != 250*time.Millisecond {
		t.Fatalf("poll interval = %v", cfg.WorkerPollInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x:y@remote:5432/hub")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.edu, https://b.edu ,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	if cfg.DBURL != "postgres://x:y@remote:5432/hub" {
		t.Fatalf("DATABASE_URL must win, got %s", cfg.DBURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.edu" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("invalid ints fall back to default, got %d", cfg.RateLimitPerMinute)
	}
	if !cfg.TracingEnabled {
		t.Fatalf("expected tracing enabled")
	}
}

func TestValidateProductionSecrets(t *testing.T) {
	cfg := Config{Env: "production", JWTSecret: "dev-secret-change-me", SessionSecret: "0123456789abcdef0123456789abcdef"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected weak jwt secret to be rejected")
	}

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dev := Config{Env: "dev", JWTSecret: "x"}
	if err := dev.Validate(); err != nil {
		t.Fatalf("dev config should always validate: %v", err)
	}
}
