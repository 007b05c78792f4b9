package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"connectcargo/app/database"
)

func GetCurrentUser(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	// Attach the bound profile matching the role.
	switch user.Role {
	case database.RoleCompany:
		var company database.Company
		if err := db.First(&company, "user_id = ?", user.ID).Error; err == nil {
			user.Company = &company
		}
	case database.RoleCarrier:
		var carrier database.Carrier
		if err := db.First(&carrier, "user_id = ?", user.ID).Error; err == nil {
			user.Carrier = &carrier
		}
	}

	return c.JSON(user)
}

func UpdateCurrentUser(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	type UpdateInput struct {
		Phone            *string `json:"phone"`
		AlternativePhone *string `json:"alternative_phone"`
		Address          *string `json:"address"`
		City             *string `json:"city"`
		Country          *string `json:"country"`
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.City != nil {
		user.City = *input.City
	}
	if input.Country != nil {
		user.Country = *input.Country
	}
	if input.AlternativePhone != nil {
		user.AlternativePhone = input.AlternativePhone
	}

	result := db.Save(&user)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(user)
}
