package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
trends:
  base_url: http://localhost:9000
  terms: [depression, anxiety]
clickhouse:
  host: localhost
  port: 9000
kafka:
  brokers: [localhost:9092]
  alert_topic: trend-alerts
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Trends.ChunkDays != 180 {
		t.Errorf("expected default chunk days 180, got %d", cfg.Trends.ChunkDays)
	}
	if cfg.Anomaly.Quorum != 3 {
		t.Errorf("expected default quorum 3, got %d", cfg.Anomaly.Quorum)
	}
	if cfg.Anomaly.BaselineCutoff != "2020-03-01" {
		t.Errorf("unexpected baseline cutoff %s", cfg.Anomaly.BaselineCutoff)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected memory cache default, got %s", cfg.Cache.Backend)
	}
	if cfg.Cache.ReportTTL != 15*time.Minute {
		t.Errorf("unexpected report ttl %v", cfg.Cache.ReportTTL)
	}
}

func TestLoadRejectsMissingTerms(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
trends:
  base_url: http://localhost:9000
`))
	if err == nil {
		t.Fatal("expected error for empty terms")
	}
}

func TestLoadRejectsUnknownCacheBackend(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
cache:
  backend: memcached
`))
	if err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("TRENDS_TERMS", "stress,insomnia,burnout")
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Trends.Terms) != 3 || cfg.Trends.Terms[2] != "burnout" {
		t.Errorf("env terms not applied: %v", cfg.Trends.Terms)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("env port not applied: %d", cfg.Server.Port)
	}
}
