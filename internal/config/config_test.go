package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "RATE_LIMIT_BACKEND", "RATE_LIMIT_WINDOW", "RATE_LIMIT_CAPACITY", "PERSIST_TIMEOUT", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RateLimitWindow != 10*time.Second {
		t.Fatalf("expected 10s window, got %s", cfg.RateLimitWindow)
	}
	if cfg.RateLimitCapacity != 1000 {
		t.Fatalf("expected capacity 1000, got %d", cfg.RateLimitCapacity)
	}
	if cfg.PersistTimeout != 5*time.Second {
		t.Fatalf("expected persist timeout 5s, got %s", cfg.PersistTimeout)
	}
	if cfg.UseRedisLimiter() {
		t.Fatalf("expected in-memory limiter by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("RATE_LIMIT_BACKEND", " Redis ")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_CAPACITY", "50")
	t.Setenv("PERSIST_TIMEOUT", "2s")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if !cfg.UseRedisLimiter() {
		t.Fatalf("expected redis limiter")
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("expected window override, got %s", cfg.RateLimitWindow)
	}
	if cfg.RateLimitCapacity != 50 {
		t.Fatalf("expected capacity override, got %d", cfg.RateLimitCapacity)
	}
	if cfg.PersistTimeout != 2*time.Second {
		t.Fatalf("expected persist timeout override, got %s", cfg.PersistTimeout)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("PERSIST_TIMEOUT", "-1s")
	cfg := Load()
	if cfg.RateLimitWindow != 10*time.Second {
		t.Fatalf("expected default window, got %s", cfg.RateLimitWindow)
	}
	if cfg.PersistTimeout != 5*time.Second {
		t.Fatalf("expected default persist timeout, got %s", cfg.PersistTimeout)
	}
}

func TestLoadAdminAllowedOrigins(t *testing.T) {
	t.Setenv("ADMIN_ALLOWED_ORIGINS", "https://admin.corstar.com, ,https://corstar.com")
	cfg := Load()
	if len(cfg.AdminAllowedOrigins) != 2 || cfg.AdminAllowedOrigins[1] != "https://corstar.com" {
		t.Fatalf("unexpected origins %v", cfg.AdminAllowedOrigins)
	}
}
