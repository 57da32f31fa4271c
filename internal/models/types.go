package models

import (
	"time"
)

// Configuration structs
type Config struct {
	Server struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Display struct {
		Timezone     string `yaml:"timezone"`      // IANA identifier or "UTC"
		DefaultRange string `yaml:"default_range"` // initial chart look-back window
	} `yaml:"display"`

	Storage struct {
		Type       string        `yaml:"type"`        // "sqlite" or "memory"
		SQLitePath string        `yaml:"sqlite_path"` // Path to SQLite database file
		MaxSamples int           `yaml:"max_samples"` // Ring size for memory storage
		Retention  time.Duration `yaml:"retention"`   // Samples older than this are pruned
	} `yaml:"storage"`

	Probe struct {
		Enabled  bool          `yaml:"enabled"`  // Enable agent reachability probing
		Interval time.Duration `yaml:"interval"` // Probe interval
		Timeout  time.Duration `yaml:"timeout"`  // Per-probe timeout
		Count    int           `yaml:"count"`    // Packets per probe
	} `yaml:"probe"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Auth AuthConfig `yaml:"auth,omitempty"` // Authentication configuration
}

// Sample is one reported rx/tx rate measurement as it arrives over the wire.
// Timestamp is deliberately loose: agents report ISO-8601 strings (with or
// without an offset) or numeric epochs, and storage hands back time.Time.
// The aggregation engine normalizes all of these; RxRate/TxRate are pointers
// so a missing field is distinguishable from an explicit zero.
type Sample struct {
	ServerName string   `json:"server_name"`
	Timestamp  any      `json:"timestamp"`
	RxRate     *float64 `json:"rx_rate"` // KiB/s
	TxRate     *float64 `json:"tx_rate"` // KiB/s
}

// NewSample builds a valid sample from concrete values.
func NewSample(server string, ts time.Time, rx, tx float64) Sample {
	return Sample{
		ServerName: server,
		Timestamp:  ts,
		RxRate:     &rx,
		TxRate:     &tx,
	}
}

// BucketedPoint is one point of a single-server aggregated series.
type BucketedPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	RxRate         float64   `json:"rx_rate"` // KiB/s, bucket mean
	TxRate         float64   `json:"tx_rate"` // KiB/s, bucket mean
	DataPointCount int       `json:"data_point_count"`
}

// CombinedPoint is one point of the cross-server combined series. TotalRx and
// TotalTx are sums of per-server bucket means, not sums of raw samples.
type CombinedPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	TotalRx        float64   `json:"total_rx"` // KiB/s
	TotalTx        float64   `json:"total_tx"` // KiB/s
	ServerCount    int       `json:"server_count"`
	DataPointCount int       `json:"data_point_count"`
}

// RealtimePoint is one point of the dense 15-minute live series. Throughput
// is the bucket's mean rx plus mean tx, a single scalar per point.
type RealtimePoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Throughput  float64   `json:"throughput"` // KiB/s
	SampleCount int       `json:"sample_count"`
}

// ServerInfo describes a server known to the dashboard.
type ServerInfo struct {
	Name        string    `json:"name"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	SampleCount int64     `json:"sample_count"`
}

// ServerStatus tracks agent reachability for a server.
type ServerStatus struct {
	ServerName string    `json:"server_name"`
	Addr       string    `json:"addr,omitempty"` // last-seen agent address
	Online     bool      `json:"online"`
	LatencyMs  *float64  `json:"latency_ms,omitempty"`
	LastCheck  time.Time `json:"last_check"`
	LastError  string    `json:"last_error,omitempty"`
}

// OverviewData feeds the dashboard header.
type OverviewData struct {
	TotalServers   int     `json:"total_servers"`
	OnlineServers  int     `json:"online_servers"`
	OfflineServers int     `json:"offline_servers"`
	TotalSamples   int64   `json:"total_samples"`
	CurrentRx      float64 `json:"current_rx"` // KiB/s, summed over servers
	CurrentTx      float64 `json:"current_tx"` // KiB/s, summed over servers
	Uptime         string  `json:"uptime"`
}

// IngestResult reports the outcome of one ingest batch.
type IngestResult struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// Authentication configuration structs
type AuthConfig struct {
	Enabled bool          `yaml:"enabled"`       // Enable/disable authentication
	API     APIAuthConfig `yaml:"api,omitempty"` // API authentication settings
}

// APIAuthConfig defines API token-based authentication
type APIAuthConfig struct {
	Tokens []APIToken `yaml:"tokens,omitempty"` // List of API tokens
}

// APIToken represents an API access token with permissions
type APIToken struct {
	Token       string    `yaml:"token" json:"token"`                             // The actual token value
	Name        string    `yaml:"name" json:"name"`                               // Human-readable name/description
	Permissions []string  `yaml:"permissions,omitempty" json:"permissions"`       // Permissions (report, read, metrics, admin)
	Expires     *string   `yaml:"expires,omitempty" json:"expires,omitempty"`     // Expiration date (YYYY-MM-DD format)
	Created     time.Time `yaml:"created,omitempty" json:"created,omitempty"`     // Creation timestamp
}

// TokenPermission defines available permissions
type TokenPermission string

const (
	PermissionMetrics TokenPermission = "metrics" // Metrics access only (/metrics, /health)
	PermissionRead    TokenPermission = "read"    // Read access to series endpoints
	PermissionReport  TokenPermission = "report"  // Sample ingest endpoint
	PermissionAdmin   TokenPermission = "admin"   // Administrative endpoints
)

// HasPermission checks if token has specific permission
func (t *APIToken) HasPermission(permission TokenPermission) bool {
	for _, p := range t.Permissions {
		perm := TokenPermission(p)
		if perm == permission {
			return true
		}
		// Admin permission grants access to everything
		if perm == PermissionAdmin {
			return true
		}
	}
	return false
}

// IsExpired checks if token is expired
func (t *APIToken) IsExpired() bool {
	if t.Expires == nil {
		return false
	}

	expireDate, err := time.Parse("2006-01-02", *t.Expires)
	if err != nil {
		return true // If we can't parse, consider expired
	}

	return time.Now().After(expireDate)
}
