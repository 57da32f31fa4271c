package config

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/storage"
)

// Prometheus metrics - exported for use by other packages
var (
	SamplesIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traffic_samples_ingested_total",
			Help: "Total number of traffic samples accepted",
		},
		[]string{"server_name"},
	)

	SamplesRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traffic_samples_rejected_total",
			Help: "Total number of traffic samples rejected during validation",
		},
		[]string{"reason"},
	)

	ServerRxRateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "traffic_rx_rate_kibps",
			Help: "Last reported receive rate per server in KiB/s",
		},
		[]string{"server_name"},
	)

	ServerTxRateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "traffic_tx_rate_kibps",
			Help: "Last reported transmit rate per server in KiB/s",
		},
		[]string{"server_name"},
	)

	ServerOnlineGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "server_agent_online",
			Help: "Agent reachability per server (1=online, 0=offline)",
		},
		[]string{"server_name"},
	)

	ProbeLatencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "server_probe_latency_seconds",
			Help:    "Histogram of agent probe latencies in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"server_name"},
	)

	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chart_aggregation_duration_seconds",
			Help:    "Time spent bucketing samples for chart responses",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"kind", "range"},
	)

	StoredSamplesPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "traffic_samples_pruned_total",
			Help: "Total number of samples removed by the retention worker",
		},
	)

	// Application performance metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveConnectionsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
		[]string{"type"},
	)
)

// AppState represents the global application state - exported for use by other packages
type AppState struct {
	Config       models.Config
	Storage      storage.Storage
	Location     *time.Location // resolved display timezone
	ServerStatus map[string]*models.ServerStatus
	Mu           sync.RWMutex // Protects ServerStatus
	StartTime    time.Time
	TotalSamples int64 // Use atomic operations for this field
	SampleChan   chan IncomingSample
}

// IncomingSample pairs a reported sample with the agent address it arrived
// from, for the reachability prober.
type IncomingSample struct {
	Sample     models.Sample
	RemoteAddr string
}

// Global application state instance
var GlobalAppState *AppState

func init() {
	prometheus.MustRegister(SamplesIngestedTotal)
	prometheus.MustRegister(SamplesRejectedTotal)
	prometheus.MustRegister(ServerRxRateGauge)
	prometheus.MustRegister(ServerTxRateGauge)
	prometheus.MustRegister(ServerOnlineGauge)
	prometheus.MustRegister(ProbeLatencyHistogram)
	prometheus.MustRegister(AggregationDuration)
	prometheus.MustRegister(StoredSamplesPruned)

	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ActiveConnectionsGauge)
}

// InitStorage initializes the storage backend
func (app *AppState) InitStorage() error {
	store, err := storage.CreateStorage(app.Config)
	if err != nil {
		return err
	}
	app.Storage = store

	log := logger.Default().WithComponent("config")
	log.Info("Storage initialized", "type", app.Config.Storage.Type)
	return nil
}

// TouchServer records that a sample arrived for a server, tracking the
// agent's address for the reachability prober.
func (app *AppState) TouchServer(serverName, remoteAddr string, at time.Time) {
	app.Mu.Lock()
	defer app.Mu.Unlock()

	if app.ServerStatus == nil {
		app.ServerStatus = make(map[string]*models.ServerStatus)
	}

	status, exists := app.ServerStatus[serverName]
	if !exists {
		status = &models.ServerStatus{ServerName: serverName}
		app.ServerStatus[serverName] = status
	}
	if remoteAddr != "" {
		status.Addr = remoteAddr
	}
	if at.After(status.LastCheck) {
		status.LastCheck = at
	}
}

// ServerStatusSnapshot returns a thread-safe copy of the status map.
func (app *AppState) ServerStatusSnapshot() map[string]*models.ServerStatus {
	app.Mu.RLock()
	defer app.Mu.RUnlock()

	statusMap := make(map[string]*models.ServerStatus, len(app.ServerStatus))
	for name, status := range app.ServerStatus {
		if status != nil {
			statusCopy := *status
			statusMap[name] = &statusCopy
		}
	}
	return statusMap
}

// SetServerStatus replaces the probe result for one server.
func (app *AppState) SetServerStatus(status models.ServerStatus) {
	app.Mu.Lock()
	defer app.Mu.Unlock()

	if app.ServerStatus == nil {
		app.ServerStatus = make(map[string]*models.ServerStatus)
	}

	existing, exists := app.ServerStatus[status.ServerName]
	if !exists {
		statusCopy := status
		app.ServerStatus[status.ServerName] = &statusCopy
		return
	}
	existing.Online = status.Online
	existing.LatencyMs = status.LatencyMs
	existing.LastCheck = status.LastCheck
	existing.LastError = status.LastError
	if status.Addr != "" {
		existing.Addr = status.Addr
	}
}
