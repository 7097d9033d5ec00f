package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("unexpected server addr: %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "data/tasks.db" {
		t.Errorf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Auth.Issuer != "task-manager-api" {
		t.Errorf("unexpected issuer: %q", cfg.Auth.Issuer)
	}
	if cfg.AccessTTL() != 7*24*time.Hour {
		t.Errorf("unexpected access ttl: %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 30*24*time.Hour {
		t.Errorf("unexpected refresh ttl: %v", cfg.RefreshTTL())
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("unexpected bcrypt cost: %d", cfg.Auth.BcryptCost)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKS_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("TASKS_AUTH_JWTSECRET", "from-env")
	t.Setenv("TASKS_AUTH_ACCESSTTLHOURS", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("env override ignored for server addr: %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("env override ignored for jwt secret: %q", cfg.Auth.JWTSecret)
	}
	if cfg.AccessTTL() != time.Hour {
		t.Errorf("env override ignored for access ttl: %v", cfg.AccessTTL())
	}
}
