package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/reaperofpower/vnstat-dashboard/internal/logger"
	"github.com/reaperofpower/vnstat-dashboard/internal/models"
	"github.com/reaperofpower/vnstat-dashboard/internal/services/auth"
)

// AuthContext stores authentication info in request context
type AuthContext struct {
	IsAuthenticated bool
	Token           *models.APIToken
	AuthType        string // "api" or "disabled"
}

// APIAuthMiddleware validates API tokens from Authorization header
func APIAuthMiddleware(authService *auth.Service, requiredPermission models.TokenPermission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip if auth is disabled
		if !authService.IsEnabled() {
			c.Locals("auth", &AuthContext{
				IsAuthenticated: true,
				Token: &models.APIToken{
					Token:       "disabled",
					Name:        "Authentication Disabled",
					Permissions: []string{"metrics", "read", "report", "admin"},
				},
				AuthType: "disabled",
			})
			return c.Next()
		}

		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
				"code":  "NO_TOKEN",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		token, err := authService.ValidateAPIToken(tokenString)
		if err != nil {
			log := logger.Default().WithComponent("auth")
			log.Warn("API token rejected", "error", err, "remote_addr", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API token",
				"code":  "INVALID_TOKEN",
			})
		}

		if !token.HasPermission(requiredPermission) {
			log := logger.Default().WithAuth(token.Name, "api")
			log.Warn("Permission denied", "required", string(requiredPermission))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
				"code":  "FORBIDDEN",
			})
		}

		c.Locals("auth", &AuthContext{
			IsAuthenticated: true,
			Token:           token,
			AuthType:        "api",
		})

		return c.Next()
	}
}
