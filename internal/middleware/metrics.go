package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reaperofpower/vnstat-dashboard/internal/config"
)

// MetricsMiddleware collects HTTP request metrics
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Increment active connections
		config.ActiveConnectionsGauge.WithLabelValues("http").Inc()
		defer config.ActiveConnectionsGauge.WithLabelValues("http").Dec()

		// Process request
		err := c.Next()

		duration := time.Since(start).Seconds()
		status := c.Response().StatusCode()

		config.HTTPRequestsTotal.WithLabelValues(
			c.Method(),
			c.Route().Path,
			strconv.Itoa(status),
		).Inc()

		config.HTTPRequestDuration.WithLabelValues(
			c.Method(),
			c.Route().Path,
		).Observe(duration)

		return err
	}
}
