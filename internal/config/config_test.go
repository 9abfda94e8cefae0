package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("unexpected default addr: %s", cfg.Server.Addr)
	}
	if cfg.Database.OsakedataPath != "data/osakedata.db" {
		t.Errorf("unexpected default path: %s", cfg.Database.OsakedataPath)
	}
	if cfg.Importer.FetchStart != "2023-07-01" || cfg.Importer.FetchEnd != "2025-09-30" {
		t.Errorf("unexpected fetch window: %s..%s", cfg.Importer.FetchStart, cfg.Importer.FetchEnd)
	}
	if cfg.Importer.TickerDelay != time.Second {
		t.Errorf("unexpected ticker delay: %v", cfg.Importer.TickerDelay)
	}
	if cfg.Importer.BlockDelay != 10*time.Second {
		t.Errorf("unexpected block delay: %v", cfg.Importer.BlockDelay)
	}
	if cfg.Importer.BlockSize != 100 || cfg.Importer.CommitEvery != 10 {
		t.Errorf("unexpected batching: %d/%d", cfg.Importer.BlockSize, cfg.Importer.CommitEvery)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("unexpected log level: %s", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
database:
  osakedata_path: /srv/data/prices.db
importer:
  ticker_delay: 250ms
  commit_every: 25
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr not read from file: %s", cfg.Server.Addr)
	}
	if cfg.Database.OsakedataPath != "/srv/data/prices.db" {
		t.Errorf("path not read from file: %s", cfg.Database.OsakedataPath)
	}
	if cfg.Importer.TickerDelay != 250*time.Millisecond {
		t.Errorf("duration not parsed: %v", cfg.Importer.TickerDelay)
	}
	if cfg.Importer.CommitEvery != 25 {
		t.Errorf("commit_every not read: %d", cfg.Importer.CommitEvery)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level not read: %s", cfg.Log.Level)
	}
	// untouched fields still get defaults
	if cfg.Database.AnalysisPath != "data/analysis.db" {
		t.Errorf("missing field should default: %s", cfg.Database.AnalysisPath)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
database:
  analysis_path: /from/file.db
`)
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ANALYSIS_DB_PATH", "/from/env.db")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("env should win over file, got %s", cfg.Server.Addr)
	}
	if cfg.Database.AnalysisPath != "/from/env.db" {
		t.Errorf("env should win over file, got %s", cfg.Database.AnalysisPath)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("env should set level, got %s", cfg.Log.Level)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_Failures(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty osakedata path", func(c *Config) { c.Database.OsakedataPath = "" }},
		{"empty analysis path", func(c *Config) { c.Database.AnalysisPath = "" }},
		{"bad fetch start", func(c *Config) { c.Importer.FetchStart = "01.07.2023" }},
		{"bad fetch end", func(c *Config) { c.Importer.FetchEnd = "soon" }},
		{"negative delay", func(c *Config) { c.Importer.TickerDelay = -time.Second }},
		{"zero block size", func(c *Config) { c.Importer.BlockSize = 0 }},
		{"zero commit every", func(c *Config) { c.Importer.CommitEvery = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFetchWindow(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	start, end := cfg.FetchWindow()
	if !start.Equal(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end: %v", end)
	}
	if !start.Before(end) {
		t.Error("window must be ascending")
	}
}
