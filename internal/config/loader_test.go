package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

func TestApplyDefaults(t *testing.T) {
	var cfg models.Config
	ApplyDefaults(&cfg)

	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Display.Timezone != "UTC" {
		t.Fatalf("expected default timezone UTC, got %s", cfg.Display.Timezone)
	}
	if cfg.Display.DefaultRange != "1h" {
		t.Fatalf("expected default range 1h, got %s", cfg.Display.DefaultRange)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Fatalf("expected default storage sqlite, got %s", cfg.Storage.Type)
	}
	if cfg.Storage.Retention != 8*24*time.Hour {
		t.Fatalf("expected default retention 192h, got %s", cfg.Storage.Retention)
	}
	if cfg.Probe.Interval != 60*time.Second {
		t.Fatalf("expected default probe interval 60s, got %s", cfg.Probe.Interval)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("expected default metrics path /metrics, got %s", cfg.Metrics.Path)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	var cfg models.Config
	cfg.Server.Port = 9000
	cfg.Display.Timezone = "Europe/Berlin"
	cfg.Storage.Type = "memory"

	ApplyDefaults(&cfg)

	if cfg.Server.Port != 9000 {
		t.Fatalf("explicit port overwritten: %d", cfg.Server.Port)
	}
	if cfg.Display.Timezone != "Europe/Berlin" {
		t.Fatalf("explicit timezone overwritten: %s", cfg.Display.Timezone)
	}
	if cfg.Storage.Type != "memory" {
		t.Fatalf("explicit storage type overwritten: %s", cfg.Storage.Type)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
display:
  timezone: "America/New_York"
  default_range: "6h"
storage:
  type: "memory"
  max_samples: 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("VNSTAT_CONFIG_PATH", path)

	app := &AppState{}
	if err := app.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if app.Config.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", app.Config.Server.Port)
	}
	if app.Config.Display.Timezone != "America/New_York" {
		t.Fatalf("expected timezone America/New_York, got %s", app.Config.Display.Timezone)
	}
	if app.Config.Display.DefaultRange != "6h" {
		t.Fatalf("expected default range 6h, got %s", app.Config.Display.DefaultRange)
	}
	if app.Config.Storage.MaxSamples != 500 {
		t.Fatalf("expected max samples 500, got %d", app.Config.Storage.MaxSamples)
	}
	// Unset fields still get defaults.
	if app.Config.Server.Host != "0.0.0.0" {
		t.Fatalf("expected defaulted host, got %s", app.Config.Server.Host)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("VNSTAT_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	app := &AppState{}
	if err := app.LoadConfig(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VNSTAT_SERVER_PORT", "8888")
	t.Setenv("VNSTAT_DISPLAY_TIMEZONE", "Asia/Tokyo")
	t.Setenv("VNSTAT_STORAGE_RETENTION", "48h")
	t.Setenv("VNSTAT_PROBE_ENABLED", "yes")
	t.Setenv("VNSTAT_METRICS_ENABLED", "off")

	var cfg models.Config
	ApplyDefaults(&cfg)
	cfg.Metrics.Enabled = true
	LoadEnvOverrides(&cfg)

	if cfg.Server.Port != 8888 {
		t.Fatalf("expected port override 8888, got %d", cfg.Server.Port)
	}
	if cfg.Display.Timezone != "Asia/Tokyo" {
		t.Fatalf("expected timezone override, got %s", cfg.Display.Timezone)
	}
	if cfg.Storage.Retention != 48*time.Hour {
		t.Fatalf("expected retention override 48h, got %s", cfg.Storage.Retention)
	}
	if !cfg.Probe.Enabled {
		t.Fatalf("expected probe enabled by override")
	}
	if cfg.Metrics.Enabled {
		t.Fatalf("expected metrics disabled by override")
	}
}

func TestLoadEnvOverridesTokens(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		t.Setenv("VNSTAT_AUTH_API_TOKENS", `[{"token":"vd_abc","name":"Agent","permissions":["report"]}]`)

		var cfg models.Config
		LoadEnvOverrides(&cfg)

		if len(cfg.Auth.API.Tokens) != 1 {
			t.Fatalf("expected 1 token, got %d", len(cfg.Auth.API.Tokens))
		}
		tok := cfg.Auth.API.Tokens[0]
		if tok.Token != "vd_abc" || tok.Name != "Agent" {
			t.Fatalf("unexpected token: %+v", tok)
		}
		if !tok.HasPermission("report") {
			t.Fatalf("expected report permission")
		}
	})

	t.Run("comma separated", func(t *testing.T) {
		t.Setenv("VNSTAT_AUTH_API_TOKENS", "vd_one, vd_two")

		var cfg models.Config
		LoadEnvOverrides(&cfg)

		if len(cfg.Auth.API.Tokens) != 2 {
			t.Fatalf("expected 2 tokens, got %d", len(cfg.Auth.API.Tokens))
		}
		if cfg.Auth.API.Tokens[1].Token != "vd_two" {
			t.Fatalf("unexpected second token: %+v", cfg.Auth.API.Tokens[1])
		}
		if !cfg.Auth.API.Tokens[0].HasPermission("read") {
			t.Fatalf("expected default read permission")
		}
	})

	t.Run("single token with permissions", func(t *testing.T) {
		t.Setenv("VNSTAT_AUTH_API_TOKEN", "vd_single")
		t.Setenv("VNSTAT_AUTH_API_TOKEN_PERMISSIONS", "report, metrics")

		var cfg models.Config
		LoadEnvOverrides(&cfg)

		if len(cfg.Auth.API.Tokens) != 1 {
			t.Fatalf("expected 1 token, got %d", len(cfg.Auth.API.Tokens))
		}
		tok := cfg.Auth.API.Tokens[0]
		if !tok.HasPermission("report") || !tok.HasPermission("metrics") {
			t.Fatalf("expected report+metrics permissions, got %v", tok.Permissions)
		}
	})
}

func TestParseBool(t *testing.T) {
	trues := []string{"true", "1", "yes", "on", "enabled", " TRUE "}
	for _, s := range trues {
		if !parseBool(s) {
			t.Fatalf("expected %q to parse true", s)
		}
	}
	falses := []string{"false", "0", "no", "off", "", "maybe"}
	for _, s := range falses {
		if parseBool(s) {
			t.Fatalf("expected %q to parse false", s)
		}
	}
}
