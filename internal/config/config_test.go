package config

import (
	"strings"
	"testing"
	"time"
)

func getenvFrom(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv(getenvFrom(nil))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("Env: got %q", cfg.Env)
	}
	if cfg.Addr != "127.0.0.1:8080" {
		t.Fatalf("Addr: got %q", cfg.Addr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("TokenTTL: got %s", cfg.TokenTTL)
	}
	if cfg.ResetTokenTTL != 10*time.Minute {
		t.Fatalf("ResetTokenTTL: got %s", cfg.ResetTokenTTL)
	}
	if cfg.SMTP.Port != 587 || cfg.SMTP.Timeout != 10*time.Second {
		t.Fatalf("SMTP defaults: got %+v", cfg.SMTP)
	}
	if cfg.RateLimitWindow != 5*time.Minute || cfg.RateLimitMax != 10 {
		t.Fatalf("rate limit defaults: got %s/%d", cfg.RateLimitWindow, cfg.RateLimitMax)
	}
	if cfg.DBMaxConns != 0 {
		t.Fatalf("DBMaxConns: got %d", cfg.DBMaxConns)
	}
}

func TestLoadFromEnvLimits(t *testing.T) {
	env := map[string]string{
		"APP_RATE_LIMIT_WINDOW": "1m",
		"APP_RATE_LIMIT_MAX":    "3",
		"APP_DB_MAX_CONNS":      "16",
	}
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.RateLimitWindow != time.Minute || cfg.RateLimitMax != 3 {
		t.Fatalf("rate limit: got %s/%d", cfg.RateLimitWindow, cfg.RateLimitMax)
	}
	if cfg.DBMaxConns != 16 {
		t.Fatalf("DBMaxConns: got %d", cfg.DBMaxConns)
	}

	env["APP_RATE_LIMIT_MAX"] = "-1"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for negative rate limit max")
	}
}

func TestLoadFromEnvTTLs(t *testing.T) {
	env := map[string]string{
		"APP_TOKEN_TTL":       "72h",
		"APP_RESET_TOKEN_TTL": "5m",
	}
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("TokenTTL: got %s", cfg.TokenTTL)
	}
	if cfg.ResetTokenTTL != 5*time.Minute {
		t.Fatalf("ResetTokenTTL: got %s", cfg.ResetTokenTTL)
	}

	env["APP_TOKEN_TTL"] = "-1h"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for non-positive TTL")
	}
}

func TestLoadFromEnvProdRequirements(t *testing.T) {
	env := map[string]string{"APP_ENV": "prod"}
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error: prod without db dsn")
	}

	env["APP_DB_DSN"] = "postgres://localhost/campusboard"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error: prod without public url")
	}

	env["APP_PUBLIC_URL"] = "https://campusboard.example.edu"
	env["APP_TOKEN_SECRET"] = "short"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error: prod with short token secret")
	}

	env["APP_TOKEN_SECRET"] = strings.Repeat("s", 32)
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if !cfg.IsProd() {
		t.Fatalf("expected prod config")
	}
}

func TestLoadFromEnvBadPublicURL(t *testing.T) {
	env := map[string]string{"APP_PUBLIC_URL": "not a url"}
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for relative public url")
	}
	env["APP_PUBLIC_URL"] = "ftp://example.com"
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestLoadFromEnvSMTP(t *testing.T) {
	env := map[string]string{"APP_SMTP_HOST": "smtp.example.edu"}
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error: smtp host without from email")
	}

	env["APP_SMTP_FROM_EMAIL"] = "NoReply@Example.edu"
	env["APP_SMTP_PORT"] = "2525"
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.SMTP.FromEmail != "noreply@example.edu" {
		t.Fatalf("FromEmail: got %q", cfg.SMTP.FromEmail)
	}
	if cfg.SMTP.Port != 2525 {
		t.Fatalf("Port: got %d", cfg.SMTP.Port)
	}
}

func TestLoadFromEnvAdminBootstrap(t *testing.T) {
	env := map[string]string{"APP_ADMIN_BOOTSTRAP_PASSWORD": "changeme-changeme"}
	if _, err := LoadFromEnv(getenvFrom(env)); err == nil {
		t.Fatalf("expected error: bootstrap password without email")
	}

	env["APP_ADMIN_BOOTSTRAP_EMAIL"] = "Dean@Example.edu"
	cfg, err := LoadFromEnv(getenvFrom(env))
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.AdminBootstrapEmail != "dean@example.edu" {
		t.Fatalf("AdminBootstrapEmail: got %q", cfg.AdminBootstrapEmail)
	}
	if cfg.AdminBootstrapName == "" {
		t.Fatalf("expected default bootstrap name")
	}
}
