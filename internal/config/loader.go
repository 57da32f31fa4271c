package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// LoadConfig loads configuration from config.yaml
func (app *AppState) LoadConfig() error {
	// Get config path from environment or use default
	configPath := GetConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, &app.Config); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	ApplyDefaults(&app.Config)

	// Apply environment variable overrides
	LoadEnvOverrides(&app.Config)

	log := logger.Default().WithComponent("config")
	log.Info("Configuration loaded", "path", configPath)

	return nil
}

// ApplyDefaults fills unset configuration fields with working defaults.
func ApplyDefaults(cfg *models.Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}

	if cfg.Display.Timezone == "" {
		cfg.Display.Timezone = "UTC"
	}
	if cfg.Display.DefaultRange == "" {
		cfg.Display.DefaultRange = "1h"
	}

	// Storage defaults
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "sqlite"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/traffic.db"
	}
	if cfg.Storage.MaxSamples <= 0 {
		cfg.Storage.MaxSamples = 100000
	}
	if cfg.Storage.Retention == 0 {
		// One week of charts plus a day of slack.
		cfg.Storage.Retention = 8 * 24 * time.Hour
	}

	// Probe defaults
	if cfg.Probe.Interval == 0 {
		cfg.Probe.Interval = 60 * time.Second
	}
	if cfg.Probe.Timeout == 0 {
		cfg.Probe.Timeout = 5 * time.Second
	}
	if cfg.Probe.Count <= 0 {
		cfg.Probe.Count = 3
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// GetConfigPath returns the config file path from env or default
func GetConfigPath() string {
	if path := os.Getenv("VNSTAT_CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}
