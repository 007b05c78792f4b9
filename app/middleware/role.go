package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"connectcargo/app/database"
	"connectcargo/app/platform/account"
)

// RequireRole gates a route group on account status and role. Company and
// carrier sections never overlap.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(database.User)

		if err := account.Authorize(&user, role); err != nil {
			if errors.Is(err, account.ErrAccountInactive) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_inactive"})
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
		}

		return c.Next()
	}
}

// RequireActive gates on account status only.
func RequireActive(c *fiber.Ctx) error {
	user := c.Locals("user").(database.User)

	if err := account.Authorize(&user, ""); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account_inactive"})
	}

	return c.Next()
}
