package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level: got %s, want info", cfg.Logging.Level)
	}
	if cfg.Analysis.MinWyckoffBars != 30 {
		t.Errorf("default min_wyckoff_bars: got %d, want 30", cfg.Analysis.MinWyckoffBars)
	}
	if cfg.Analysis.BuyThreshold != 0.3 || cfg.Analysis.SellThreshold != -0.3 {
		t.Errorf("default thresholds: got %v/%v", cfg.Analysis.BuyThreshold, cfg.Analysis.SellThreshold)
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("default workers: got %d, want 4", cfg.Analysis.Workers)
	}
	if !cfg.UI.ColorEnabled {
		t.Error("color should default to enabled")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[server]
port = 9090

[logging]
level = "debug"

[analysis]
workers = 8
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level: got %s, want debug", cfg.Logging.Level)
	}
	if cfg.Analysis.Workers != 8 {
		t.Errorf("workers: got %d, want 8", cfg.Analysis.Workers)
	}
	// Untouched sections keep their defaults
	if cfg.Analysis.PivotLookback != 5 {
		t.Errorf("pivot_lookback should keep its default, got %d", cfg.Analysis.PivotLookback)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MARKETLENS_PORT", "7070")
	t.Setenv("MARKETLENS_DB", "/tmp/override.db")
	t.Setenv("MARKETLENS_LOG_LEVEL", "warn")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port override: got %d, want 7070", cfg.Server.Port)
	}
	if cfg.Store.Path != "/tmp/override.db" {
		t.Errorf("db override: got %s", cfg.Store.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level override: got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Logging:  LoggingConfig{Level: "info"},
			Analysis: AnalysisConfig{PivotLookback: 5, MergeThreshold: 0.02, BuyThreshold: 0.3, SellThreshold: -0.3, Workers: 4},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"negative wyckoff bars", func(c *Config) { c.Analysis.MinWyckoffBars = -1 }},
		{"zero pivot lookback", func(c *Config) { c.Analysis.PivotLookback = 0 }},
		{"merge threshold above one", func(c *Config) { c.Analysis.MergeThreshold = 1.5 }},
		{"inverted thresholds", func(c *Config) { c.Analysis.BuyThreshold = -0.5 }},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTemplate(dir)
	if err != nil {
		t.Fatalf("WriteTemplate failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("template written outside %s: %s", dir, path)
	}

	// The generated template must load cleanly
	if _, err := Load(dir); err != nil {
		t.Errorf("generated template does not load: %v", err)
	}
}
