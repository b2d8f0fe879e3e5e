package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/MarcosViniB/PagSync/internal/pkg/env"
)

// AdminKeyMiddleware authenticates admin endpoints against the static
// ADMIN_API_KEY. Requests without a matching x-api-key header get a 401;
// a misconfigured (empty) key rejects everything rather than open the door.
func AdminKeyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		expected := env.GetEnv("ADMIN_API_KEY", "")
		if expected == "" {
			log.Error("[Admin] ADMIN_API_KEY is not configured; rejecting request")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Admin API key not configured"})
		}

		provided := extractAdminKeyFromHeader(c)
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
		}

		return c.Next()
	}
}

func extractAdminKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("x-api-key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
