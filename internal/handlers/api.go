package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/aggregate"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/ingest"
)

// API Handlers

// ingestBody is the accepted POST body: either a bare sample, a bare array
// of samples, or a {"samples": [...]} wrapper.
type ingestBody struct {
	Samples []models.Sample `json:"samples"`
}

// HandleIngestSamples - POST /api/v1/samples - Accept reported samples
func HandleIngestSamples(c *fiber.Ctx) error {
	body := c.Body()

	var samples []models.Sample
	if err := json.Unmarshal(body, &samples); err != nil {
		var single models.Sample
		if err := json.Unmarshal(body, &single); err == nil && single.ServerName != "" {
			samples = []models.Sample{single}
		} else {
			var wrapped ingestBody
			if err := json.Unmarshal(body, &wrapped); err != nil || len(wrapped.Samples) == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Request body must be a sample, an array of samples, or {\"samples\": [...]}",
				})
			}
			samples = wrapped.Samples
		}
	}

	result := ingest.Submit(config.GlobalAppState, samples, c.IP())

	log := logger.Default().WithComponent("api")
	log.Debug("Ingest batch processed", "accepted", result.Accepted, "rejected", result.Rejected, "remote_addr", c.IP())

	status := fiber.StatusAccepted
	if result.Accepted == 0 && result.Rejected > 0 {
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{
		"accepted":  result.Accepted,
		"rejected":  result.Rejected,
		"timestamp": time.Now(),
	})
}

// HandleGetServers - GET /api/v1/servers - Known servers with agent status
func HandleGetServers(c *fiber.Ctx) error {
	servers, err := config.GlobalAppState.Storage.Servers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list servers",
		})
	}

	statusMap := config.GlobalAppState.ServerStatusSnapshot()

	type ServerOverview struct {
		models.ServerInfo
		Status *models.ServerStatus `json:"status,omitempty"`
	}

	overview := make([]ServerOverview, 0, len(servers))
	for _, info := range servers {
		overview = append(overview, ServerOverview{
			ServerInfo: info,
			Status:     statusMap[info.Name],
		})
	}

	return c.JSON(fiber.Map{
		"servers":   overview,
		"total":     len(overview),
		"timestamp": time.Now(),
	})
}

// rangeLabel reads the requested look-back window from the query string.
// Unknown labels are passed through; the aggregation engine falls back to
// 1h for them.
func rangeLabel(c *fiber.Ctx) string {
	return c.Query("range", config.GlobalAppState.Config.Display.DefaultRange)
}

// HandleGetServerSeries - GET /api/v1/servers/:name/series?range=1h
func HandleGetServerSeries(c *fiber.Ctx) error {
	serverName := c.Params("name")
	label := rangeLabel(c)

	app := config.GlobalAppState
	now := time.Now()
	window := aggregate.WindowFor(label)

	samples, err := app.Storage.SamplesSince(serverName, window.Cutoff(now))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load samples",
		})
	}

	start := time.Now()
	points := aggregate.Aggregate(samples, label, now, app.Location)
	config.AggregationDuration.WithLabelValues("single", window.Label).Observe(time.Since(start).Seconds())

	return c.JSON(fiber.Map{
		"server_name": serverName,
		"range":       window.Label,
		"points":      points,
		"timestamp":   now,
	})
}

// HandleGetCombinedSeries - GET /api/v1/combined?range=1h
func HandleGetCombinedSeries(c *fiber.Ctx) error {
	label := rangeLabel(c)

	app := config.GlobalAppState
	now := time.Now()
	window := aggregate.WindowFor(label)

	perServer, err := app.Storage.AllSamplesSince(window.Cutoff(now))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load samples",
		})
	}

	start := time.Now()
	points := aggregate.Combine(perServer, label, now, app.Location)
	config.AggregationDuration.WithLabelValues("combined", window.Label).Observe(time.Since(start).Seconds())

	return c.JSON(fiber.Map{
		"range":        window.Label,
		"server_count": len(perServer),
		"points":       points,
		"timestamp":    now,
	})
}

// HandleGetRealtime - GET /api/v1/realtime - Dense 15-minute live series
func HandleGetRealtime(c *fiber.Ctx) error {
	app := config.GlobalAppState
	now := time.Now()

	perServer, err := app.Storage.AllSamplesSince(now.Add(-aggregate.RealtimeWindow))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load samples",
		})
	}

	start := time.Now()
	series := aggregate.AggregateRealtime(perServer, now, app.Location)
	config.AggregationDuration.WithLabelValues("realtime", "15m").Observe(time.Since(start).Seconds())

	return c.JSON(fiber.Map{
		"series":    series,
		"timestamp": now,
	})
}

// HandleGetRanges - GET /api/v1/ranges - Supported look-back windows
func HandleGetRanges(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ranges":  aggregate.WindowLabels(),
		"default": config.GlobalAppState.Config.Display.DefaultRange,
	})
}
