package handlers

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/aggregate"
)

// UI Handlers

// HandleDashboard - GET / - Main dashboard page
func HandleDashboard(c *fiber.Ctx) error {
	app := config.GlobalAppState

	servers, err := app.Storage.Servers()
	if err != nil {
		return fmt.Errorf("loading servers for dashboard: %w", err)
	}

	return c.Render("pages/dashboard", fiber.Map{
		"Servers":      servers,
		"Overview":     CalculateOverviewData(app),
		"Ranges":       aggregate.WindowLabels(),
		"DefaultRange": app.Config.Display.DefaultRange,
		"Timezone":     app.Config.Display.Timezone,
	})
}

// CalculateOverviewData builds the dashboard header numbers.
func CalculateOverviewData(app *config.AppState) models.OverviewData {
	overview := models.OverviewData{
		TotalSamples: atomic.LoadInt64(&app.TotalSamples),
		Uptime:       formatUptime(time.Since(app.StartTime)),
	}

	statusMap := app.ServerStatusSnapshot()
	overview.TotalServers = len(statusMap)
	for _, status := range statusMap {
		if status.Online {
			overview.OnlineServers++
		} else {
			overview.OfflineServers++
		}
	}

	// Current throughput comes from the most recent realtime bucket of the
	// combined view.
	now := time.Now()
	perServer, err := app.Storage.AllSamplesSince(now.Add(-aggregate.RealtimeWindow))
	if err != nil {
		return overview
	}
	points := aggregate.Combine(perServer, "1h", now, app.Location)
	if len(points) > 0 {
		last := points[len(points)-1]
		overview.CurrentRx = last.TotalRx
		overview.CurrentTx = last.TotalTx
	}

	return overview
}

func formatUptime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
	}
}
