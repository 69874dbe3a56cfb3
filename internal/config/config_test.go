package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:           "8000",
		Env:            "production",
		DatabaseURL:    "postgres://localhost/vigia",
		DBMaxConns:     20,
		DBMinConns:     5,
		AuthSecret:     strings.Repeat("s", 32),
		RequestTimeout: 30 * time.Second,
		HistoryWindow:  50,
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vigia_test")
	t.Setenv("PORT", "9001")
	t.Setenv("HISTORY_WINDOW", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9001" {
		t.Errorf("expected port 9001, got %s", cfg.Port)
	}
	if cfg.HistoryWindow != 10 {
		t.Errorf("expected history window 10, got %d", cfg.HistoryWindow)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected default 30s timeout, got %s", cfg.RequestTimeout)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := validConfig()
	cfg.AuthSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing AUTH_SECRET in production")
	}

	cfg.AuthSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short AUTH_SECRET")
	}
}

func TestValidate_DevModeNeedsNoSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "development"
	cfg.AuthSecret = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development mode must not require a secret: %v", err)
	}
}

func TestValidate_Bounds(t *testing.T) {
	cfg := validConfig()
	cfg.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}

	cfg = validConfig()
	cfg.HistoryWindow = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for history window below 2")
	}

	cfg = validConfig()
	cfg.DBMinConns = 30
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for min conns above max")
	}
}

func TestResolvedAuthMode(t *testing.T) {
	cfg := validConfig()
	if got := cfg.ResolvedAuthMode(); got != "jwt" {
		t.Errorf("expected jwt in production, got %s", got)
	}
	cfg.Env = "development"
	if got := cfg.ResolvedAuthMode(); got != "development" {
		t.Errorf("expected development, got %s", got)
	}
	cfg.AuthMode = "jwt"
	if got := cfg.ResolvedAuthMode(); got != "jwt" {
		t.Errorf("explicit AUTH_MODE must win, got %s", got)
	}
}
