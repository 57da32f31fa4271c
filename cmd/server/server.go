package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
	"github.com/reaperofpower/vnstat-dashboard/internal/handlers"
	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/middleware"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/auth"
)

// SetupFiberApp configures and returns the Fiber application
func SetupFiberApp(appState *config.AppState) *fiber.App {
	log := logger.Default().WithComponent("server")

	// Initialize authentication service
	authService := auth.NewService(&appState.Config.Auth)
	log.Info("Authentication service initialized", "enabled", authService.IsEnabled())

	// Initialize template engine
	engine := html.New("./web/templates", ".html")
	engine.AddFunc("formatRate", func(rate float64) string {
		return formatRate(rate)
	})

	fiberApp := fiber.New(fiber.Config{
		Views:        engine,
		ReadTimeout:  appState.Config.Server.ReadTimeout,
		WriteTimeout: appState.Config.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			requestLog := log.WithRequest(c.Method(), c.Path())
			requestLog.Error("Request error", "error", err, "status_code", code, "user_agent", c.Get("User-Agent"))

			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Middleware
	fiberApp.Use(recover.New())
	fiberApp.Use(middleware.MetricsMiddleware())

	// Structured request logging
	fiberApp.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)
		requestLog := log.WithRequest(c.Method(), c.Path())

		if err != nil {
			requestLog.Error("Request completed with error",
				"status", c.Response().StatusCode(),
				"duration_ms", duration.Milliseconds(),
				"remote_addr", c.IP(),
				"error", err)
		} else {
			requestLog.Info("Request completed",
				"status", c.Response().StatusCode(),
				"duration_ms", duration.Milliseconds(),
				"remote_addr", c.IP())
		}

		return err
	})

	fiberApp.Use(cors.New())

	// Health check endpoint
	fiberApp.Get("/health",
		middleware.APIAuthMiddleware(authService, models.PermissionMetrics),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status":  "ok",
				"uptime":  time.Since(appState.StartTime).Seconds(),
				"version": "1.0.0",
			})
		})

	// Static files
	fiberApp.Static("/static", "./web/static")

	// Dashboard pages and their data (public)
	fiberApp.Get("/", handlers.HandleDashboard)
	fiberApp.Get("/dashboard", handlers.HandleDashboard)

	ui := fiberApp.Group("/ui")
	ui.Get("/servers", handlers.HandleGetServers)
	ui.Get("/chart-data", handlers.HandleGetCombinedSeries)
	ui.Get("/chart-data/:name", handlers.HandleGetServerSeries)
	ui.Get("/realtime", handlers.HandleGetRealtime)
	ui.Get("/ranges", handlers.HandleGetRanges)

	// API Routes - Protected with API tokens
	api := fiberApp.Group("/api/v1")

	// Ingest endpoint (report permission required)
	apiReport := api.Group("", middleware.APIAuthMiddleware(authService, models.PermissionReport))
	apiReport.Post("/samples", handlers.HandleIngestSamples)

	// Series endpoints (read permission required)
	apiRead := api.Group("", middleware.APIAuthMiddleware(authService, models.PermissionRead))
	apiRead.Get("/servers", handlers.HandleGetServers)
	apiRead.Get("/servers/:name/series", handlers.HandleGetServerSeries)
	apiRead.Get("/combined", handlers.HandleGetCombinedSeries)
	apiRead.Get("/realtime", handlers.HandleGetRealtime)
	apiRead.Get("/ranges", handlers.HandleGetRanges)
	apiRead.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"uptime":  time.Since(appState.StartTime).Seconds(),
			"version": "1.0.0",
		})
	})

	// Metrics endpoint (Prometheus format)
	if appState.Config.Metrics.Enabled {
		fiberApp.Get(appState.Config.Metrics.Path,
			middleware.APIAuthMiddleware(authService, models.PermissionMetrics),
			handlers.HandlePrometheusMetrics)
	}

	return fiberApp
}

// formatRate renders a KiB/s value with a unit suited to its magnitude.
func formatRate(rate float64) string {
	switch {
	case rate >= 1024*1024:
		return fmt.Sprintf("%.2f GiB/s", rate/(1024*1024))
	case rate >= 1024:
		return fmt.Sprintf("%.2f MiB/s", rate/1024)
	default:
		return fmt.Sprintf("%.2f KiB/s", rate)
	}
}
