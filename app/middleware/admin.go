package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"connectcargo/app/config"
)

const HeaderXAPIKey = "X-API-Key"

// AdminKeyMiddleware protects the management endpoints used by the CLI.
func AdminKeyMiddleware(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)

	key := c.Get(HeaderXAPIKey)
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AdminAPIKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	}

	return c.Next()
}
