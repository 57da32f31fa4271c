package handlers

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
)

// HandlePrometheusMetrics - GET /metrics - Prometheus format metrics
func HandlePrometheusMetrics(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/plain; charset=utf-8")

	var metrics strings.Builder

	metrics.WriteString("# HELP server_agent_online Agent reachability per server (1=online, 0=offline)\n")
	metrics.WriteString("# TYPE server_agent_online gauge\n")
	metrics.WriteString("# HELP server_agent_latency_ms Last probe latency per server in milliseconds\n")
	metrics.WriteString("# TYPE server_agent_latency_ms gauge\n")

	statusMap := config.GlobalAppState.ServerStatusSnapshot()
	for name, status := range statusMap {
		online := 0
		if status.Online {
			online = 1
		}
		metrics.WriteString(fmt.Sprintf(
			"server_agent_online{server_name=\"%s\"} %d\n",
			name, online,
		))
		if status.LatencyMs != nil {
			metrics.WriteString(fmt.Sprintf(
				"server_agent_latency_ms{server_name=\"%s\"} %.2f\n",
				name, *status.LatencyMs,
			))
		}
	}

	// App stats
	metrics.WriteString("# HELP app_uptime_seconds Application uptime in seconds\n")
	metrics.WriteString("# TYPE app_uptime_seconds gauge\n")
	metrics.WriteString(fmt.Sprintf("app_uptime_seconds %.2f\n", time.Since(config.GlobalAppState.StartTime).Seconds()))

	metrics.WriteString("# HELP app_total_samples Total number of samples accepted since start\n")
	metrics.WriteString("# TYPE app_total_samples counter\n")
	metrics.WriteString(fmt.Sprintf("app_total_samples %d\n", atomic.LoadInt64(&config.GlobalAppState.TotalSamples)))

	metrics.WriteString("# HELP app_known_servers Number of servers currently tracked\n")
	metrics.WriteString("# TYPE app_known_servers gauge\n")
	metrics.WriteString(fmt.Sprintf("app_known_servers %d\n", len(statusMap)))

	return c.SendString(metrics.String())
}
