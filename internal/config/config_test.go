package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
server:
  port: "9090"
postgres:
  url: postgres://from-file
cache:
  ttl: 2m
play:
  initial_level: 1
events:
  past_floor: "2015-06-01"
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Play.InitialLevel != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Postgres.URL != "postgres://from-env" || cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
	if got := TTLDuration(cfg.Cache.TTL, time.Minute); got != 2*time.Minute {
		t.Fatalf("expected 2m ttl, got %v", got)
	}
	want := time.Date(2015, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := Date(cfg.Events.PastFloor, time.Time{}); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if cfg.Server.Port != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
	if got := TTLDuration("bogus", time.Second); got != time.Second {
		t.Fatalf("expected fallback for bad duration, got %v", got)
	}
}
