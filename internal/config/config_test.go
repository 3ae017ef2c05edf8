package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsFileAndAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("server:\n  http_addr: \":9090\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Fatalf("http_addr=%q want :9090", cfg.Server.HTTPAddr)
	}
	// Unset keys fall back to defaults.
	if cfg.Cron.DailySnapshot != "0 0 0 * * *" {
		t.Fatalf("daily spec=%q want default", cfg.Cron.DailySnapshot)
	}
	if cfg.Snapshots.RetentionDailyDays != 90 || cfg.Snapshots.RetentionWeeklyWeeks != 52 {
		t.Fatalf("retention=%+v want 90/52", cfg.Snapshots)
	}
	if cfg.Leaderboard.DefaultLimit != 50 {
		t.Fatalf("leaderboard limit=%d want 50", cfg.Leaderboard.DefaultLimit)
	}
}

func TestLoadEnvOnlySkipsFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("http_addr=%q want default", cfg.Server.HTTPAddr)
	}
	if !cfg.Cron.Enabled {
		t.Fatalf("cron must default to enabled")
	}
}
