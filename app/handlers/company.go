package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"connectcargo/app/database"
)

func companyProfile(c *fiber.Ctx) (*database.Company, error) {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var company database.Company
	result := db.First(&company, "user_id = ?", user.ID)
	if result.Error != nil {
		return nil, result.Error
	}
	return &company, nil
}

// CompanyDashboard summarizes the shipper's activity.
func CompanyDashboard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var open, inTransit, delivered int64
	db.Model(&database.Shipment{}).Where("company_id = ? AND status = ?", company.ID, database.ShipmentPublished).Count(&open)
	db.Model(&database.Shipment{}).Where("company_id = ? AND status IN ?", company.ID,
		[]string{database.ShipmentAssigned, database.ShipmentInTransit}).Count(&inTransit)
	db.Model(&database.Shipment{}).Where("company_id = ? AND status = ?", company.ID, database.ShipmentDelivered).Count(&delivered)

	return c.JSON(fiber.Map{
		"company":             company,
		"open_shipments":      open,
		"active_shipments":    inTransit,
		"delivered_shipments": delivered,
	})
}

func GetCompanyProfile(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(company)
}

func UpdateCompanyProfile(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type UpdateInput struct {
		LegalName      *string              `json:"legal_name"`
		CommercialName *string              `json:"commercial_name"`
		CompanySize    *string              `json:"company_size"`
		Certifications database.StringArray `json:"certifications"`
		CoverageZones  database.StringArray `json:"coverage_zones"`
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.LegalName != nil && *input.LegalName != "" {
		company.LegalName = *input.LegalName
	}
	if input.CommercialName != nil {
		company.CommercialName = input.CommercialName
	}
	if input.CompanySize != nil {
		company.CompanySize = input.CompanySize
	}
	if input.Certifications != nil {
		company.Certifications = input.Certifications
	}
	if input.CoverageZones != nil {
		company.CoverageZones = input.CoverageZones
	}

	if err := db.Save(company).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(company)
}
