package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"connectcargo/app/database"
)

func carrierProfile(c *fiber.Ctx) (*database.Carrier, error) {
	db := c.Locals("db").(*gorm.DB)
	user := c.Locals("user").(database.User)

	var carrier database.Carrier
	result := db.First(&carrier, "user_id = ?", user.ID)
	if result.Error != nil {
		return nil, result.Error
	}
	return &carrier, nil
}

// CarrierDashboard summarizes the carrier's activity.
func CarrierDashboard(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var pendingQuotes, activeTrips int64
	db.Model(&database.Quote{}).Where("carrier_id = ? AND status = ?", carrier.ID, database.QuotePending).Count(&pendingQuotes)
	db.Model(&database.Shipment{}).Where("carrier_id = ? AND status IN ?", carrier.ID,
		[]string{database.ShipmentAssigned, database.ShipmentInTransit}).Count(&activeTrips)

	return c.JSON(fiber.Map{
		"carrier":        carrier,
		"pending_quotes": pendingQuotes,
		"active_trips":   activeTrips,
	})
}

func GetCarrierProfile(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(carrier)
}

func UpdateCarrierProfile(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type UpdateInput struct {
		CarrierType     *string  `json:"carrier_type"`
		DriverLicense   *string  `json:"driver_license"`
		LicenseCategory *string  `json:"license_category"`
		InsurancePolicy *string  `json:"insurance_policy"`
		ActiveInsurance *bool    `json:"active_insurance"`
		YearsExperience *int     `json:"years_experience"`
		MaxCapacityKg   *float64 `json:"max_capacity_kg"`
		Availability247 *bool    `json:"availability_24_7"`
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.CarrierType != nil {
		switch *input.CarrierType {
		case database.CarrierTypeIndividual, database.CarrierTypeCompany:
			carrier.CarrierType = *input.CarrierType
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid carrier type"})
		}
	}
	if input.DriverLicense != nil {
		carrier.DriverLicense = input.DriverLicense
	}
	if input.LicenseCategory != nil {
		carrier.LicenseCategory = input.LicenseCategory
	}
	if input.InsurancePolicy != nil {
		carrier.InsurancePolicy = input.InsurancePolicy
	}
	if input.ActiveInsurance != nil {
		carrier.ActiveInsurance = *input.ActiveInsurance
	}
	if input.YearsExperience != nil {
		carrier.YearsExperience = *input.YearsExperience
	}
	if input.MaxCapacityKg != nil {
		carrier.MaxCapacityKg = input.MaxCapacityKg
	}
	if input.Availability247 != nil {
		carrier.Availability247 = *input.Availability247
	}

	if err := db.Save(carrier).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(carrier)
}
