package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9090"
  mode: test
engine:
  default_timezone: Europe/Berlin
  query_page_size: 50
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.Mode != "test" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Engine.DefaultTimezone != "Europe/Berlin" || cfg.Engine.QueryPageSize != 50 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	// untouched keys keep their defaults
	if cfg.Engine.MondayHistoryWeeks != 4 || cfg.Database.Driver != "sqlite" {
		t.Errorf("defaults lost: %+v %+v", cfg.Engine, cfg.Database)
	}
	if cfg.FilePath == "" {
		t.Error("FilePath should record the file in use")
	}
}

func TestLoadConfig_WithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FilePath != "" {
		t.Errorf("FilePath = %q", cfg.FilePath)
	}
	if cfg.Engine.ClockSkew().Seconds() != 120 {
		t.Errorf("ClockSkew = %v", cfg.Engine.ClockSkew())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"bad timezone", func(c *Config) { c.Engine.DefaultTimezone = "Mars/Olympus" }},
		{"negative skew", func(c *Config) { c.Engine.ClockSkewSeconds = -1 }},
		{"zero page size", func(c *Config) { c.Engine.QueryPageSize = 0 }},
		{"zero concurrency", func(c *Config) { c.Engine.RecomputeConcurrency = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"short secret in release", func(c *Config) {
			c.Server.Mode = "release"
			c.JWT.Required = true
			c.JWT.Secret = "short"
		}},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
