// Package health probes the reachability of reporting agents so the
// dashboard can flag servers whose agent has gone quiet.
package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-ping/ping"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// StartProber starts the goroutine that periodically pings the last-seen
// address of every known agent.
func StartProber(ctx context.Context, appState *config.AppState) {
	if !appState.Config.Probe.Enabled {
		logger.Default().WithComponent("prober").Info("Agent probing disabled")
		return
	}

	log := logger.Default().WithComponent("prober")
	interval := appState.Config.Probe.Interval
	log.Info("Starting agent prober", "interval", interval)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("Stopping agent prober")
				return
			case <-ticker.C:
				ProbeAll(appState)
			}
		}
	}()
}

// ProbeAll probes every server with a known agent address.
func ProbeAll(appState *config.AppState) {
	for name, status := range appState.ServerStatusSnapshot() {
		if status.Addr == "" {
			continue
		}
		go ProbeServer(appState, name, status.Addr)
	}
}

// ProbeServer pings one agent address and records the result.
func ProbeServer(appState *config.AppState, serverName, addr string) {
	log := logger.Default().WithProbe(serverName, addr)

	status := models.ServerStatus{
		ServerName: serverName,
		Addr:       addr,
		LastCheck:  time.Now(),
	}

	latency, err := executeProbe(appState, addr)
	if err != nil {
		status.Online = false
		status.LastError = err.Error()
		config.ServerOnlineGauge.WithLabelValues(serverName).Set(0)
		log.Debug("Agent probe failed", "error", err)
	} else {
		status.Online = true
		status.LatencyMs = &latency
		config.ServerOnlineGauge.WithLabelValues(serverName).Set(1)
		config.ProbeLatencyHistogram.WithLabelValues(serverName).Observe(latency / 1000)
		log.Debug("Agent probe successful", "latency_ms", latency)
	}

	appState.SetServerStatus(status)
}

// executeProbe runs one ICMP probe and returns the average latency in ms.
func executeProbe(appState *config.AppState, addr string) (float64, error) {
	// Agent addresses arrive as host:port from the HTTP layer.
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	pinger, err := ping.NewPinger(addr)
	if err != nil {
		return 0, fmt.Errorf("failed to create pinger: %w", err)
	}

	pinger.Count = appState.Config.Probe.Count
	pinger.Timeout = appState.Config.Probe.Timeout
	pinger.SetPrivileged(false) // Use unprivileged mode

	if err := pinger.Run(); err != nil {
		return 0, fmt.Errorf("probe failed: %w", err)
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("no packets received")
	}

	return float64(stats.AvgRtt.Nanoseconds()) / 1e6, nil
}
