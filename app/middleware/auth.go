package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"connectcargo/app/database"
)

// AuthMiddleware resolves the session into a user and stores it in
// c.Locals("user"). Requests without a live session are rejected.
func AuthMiddleware(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	store := c.Locals("store").(*session.Store)

	sess, err := store.Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	rawID, ok := sess.Get("user_id").(string)
	if !ok || rawID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	var user database.User
	result := db.First(&user, "id = ?", userID)
	if result.Error != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	c.Locals("user", user)

	return c.Next()
}
