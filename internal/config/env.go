package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// LoadEnvOverrides applies environment variable overrides to the configuration
func LoadEnvOverrides(cfg *models.Config) {
	log := logger.Default().WithComponent("config-env")

	// Server configuration
	if v := os.Getenv("VNSTAT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
		log.Info("Environment override applied", "setting", "Server.Host", "value", v)
	}
	if v := os.Getenv("VNSTAT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
			log.Info("Environment override applied", "setting", "Server.Port", "value", port)
		}
	}
	if v := os.Getenv("VNSTAT_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
			log.Info("Environment override applied", "setting", "Server.ReadTimeout", "value", d.String())
		}
	}
	if v := os.Getenv("VNSTAT_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
			log.Info("Environment override applied", "setting", "Server.WriteTimeout", "value", d.String())
		}
	}

	// Display configuration
	if v := os.Getenv("VNSTAT_DISPLAY_TIMEZONE"); v != "" {
		cfg.Display.Timezone = v
		log.Info("Environment override applied", "setting", "Display.Timezone", "value", v)
	}
	if v := os.Getenv("VNSTAT_DISPLAY_DEFAULT_RANGE"); v != "" {
		cfg.Display.DefaultRange = v
		log.Info("Environment override applied", "setting", "Display.DefaultRange", "value", v)
	}

	// Storage configuration
	if v := os.Getenv("VNSTAT_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
		log.Info("Environment override applied", "setting", "Storage.Type", "value", v)
	}
	if v := os.Getenv("VNSTAT_STORAGE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
		log.Info("Environment override applied", "setting", "Storage.SQLitePath", "value", v)
	}
	if v := os.Getenv("VNSTAT_STORAGE_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Storage.Retention = d
			log.Info("Environment override applied", "setting", "Storage.Retention", "value", d.String())
		}
	}
	if v := os.Getenv("VNSTAT_STORAGE_MAX_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.MaxSamples = n
			log.Info("Environment override applied", "setting", "Storage.MaxSamples", "value", n)
		}
	}

	// Probe configuration
	if v := os.Getenv("VNSTAT_PROBE_ENABLED"); v != "" {
		cfg.Probe.Enabled = parseBool(v)
		log.Info("Environment override applied", "setting", "Probe.Enabled", "value", cfg.Probe.Enabled)
	}
	if v := os.Getenv("VNSTAT_PROBE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Probe.Interval = d
			log.Info("Environment override applied", "setting", "Probe.Interval", "value", d.String())
		}
	}
	if v := os.Getenv("VNSTAT_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Probe.Timeout = d
			log.Info("Environment override applied", "setting", "Probe.Timeout", "value", d.String())
		}
	}

	// Metrics configuration
	if v := os.Getenv("VNSTAT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
		log.Info("Environment override applied", "setting", "Metrics.Enabled", "value", cfg.Metrics.Enabled)
	}
	if v := os.Getenv("VNSTAT_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
		log.Info("Environment override applied", "setting", "Metrics.Path", "value", v)
	}

	// Authentication configuration
	if v := os.Getenv("VNSTAT_AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = parseBool(v)
		log.Info("Environment override applied", "setting", "Auth.Enabled", "value", cfg.Auth.Enabled)
	}

	// API Tokens from environment
	// Format 1: JSON array
	if v := os.Getenv("VNSTAT_AUTH_API_TOKENS"); v != "" {
		var tokens []models.APIToken
		if err := json.Unmarshal([]byte(v), &tokens); err == nil {
			cfg.Auth.API.Tokens = tokens
			log.Info("Environment override applied", "setting", "Auth.API.Tokens", "count", len(tokens), "source", "JSON")
		} else {
			// Format 2: Simple comma-separated tokens with default permissions
			tokenStrings := strings.Split(v, ",")
			tokens = []models.APIToken{}
			for i, token := range tokenStrings {
				token = strings.TrimSpace(token)
				if token != "" {
					tokens = append(tokens, models.APIToken{
						Token:       token,
						Name:        "ENV Token " + strconv.Itoa(i+1),
						Permissions: []string{"read"}, // Default permission
					})
				}
			}
			if len(tokens) > 0 {
				cfg.Auth.API.Tokens = tokens
				log.Info("Environment override applied", "setting", "Auth.API.Tokens", "count", len(tokens), "source", "comma-separated")
			}
		}
	}

	// Individual token support for simple deployments
	if v := os.Getenv("VNSTAT_AUTH_API_TOKEN"); v != "" {
		permissions := []string{"read"} // default
		if p := os.Getenv("VNSTAT_AUTH_API_TOKEN_PERMISSIONS"); p != "" {
			permissions = strings.Split(p, ",")
			for i := range permissions {
				permissions[i] = strings.TrimSpace(permissions[i])
			}
		}

		cfg.Auth.API.Tokens = []models.APIToken{
			{
				Token:       v,
				Name:        "ENV Token",
				Permissions: permissions,
			},
		}
		log.Info("Environment override applied", "setting", "Auth.API.Token", "permissions", permissions)
	}
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "1", "yes", "on", "enabled":
		return true
	default:
		return false
	}
}
