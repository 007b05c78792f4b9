package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"connectcargo/app/config"
	"connectcargo/app/database"
)

func ListVehicles(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	var vehicles []database.Vehicle
	result := db.Where("carrier_id = ?", carrier.ID).Find(&vehicles)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(vehicles)
}

func CreateVehicle(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type VehicleInput struct {
		Plate       string   `json:"plate" validate:"required"`
		VehicleType string   `json:"vehicle_type" validate:"required"`
		Brand       *string  `json:"brand"`
		Model       *string  `json:"model"`
		Year        *int     `json:"year"`
		CapacityKg  *float64 `json:"capacity_kg"`
	}

	var input VehicleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	vehicle := database.Vehicle{
		CarrierID:   carrier.ID,
		Plate:       input.Plate,
		VehicleType: input.VehicleType,
		Brand:       input.Brand,
		Model:       input.Model,
		Year:        input.Year,
		CapacityKg:  input.CapacityKg,
	}

	if err := db.Create(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "duplicate_plate"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(vehicle)
}

func UpdateVehicle(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	vehicleID, err := uuid.Parse(c.Params("vehicle_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid vehicle ID"})
	}

	var vehicle database.Vehicle
	result := db.First(&vehicle, "id = ? AND carrier_id = ?", vehicleID, carrier.ID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Vehicle not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type UpdateInput struct {
		VehicleType *string  `json:"vehicle_type"`
		Brand       *string  `json:"brand"`
		Model       *string  `json:"model"`
		Year        *int     `json:"year"`
		CapacityKg  *float64 `json:"capacity_kg"`
		Status      *string  `json:"status"`
	}

	var input UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if input.VehicleType != nil {
		vehicle.VehicleType = *input.VehicleType
	}
	if input.Brand != nil {
		vehicle.Brand = input.Brand
	}
	if input.Model != nil {
		vehicle.Model = input.Model
	}
	if input.Year != nil {
		vehicle.Year = input.Year
	}
	if input.CapacityKg != nil {
		vehicle.CapacityKg = input.CapacityKg
	}
	if input.Status != nil {
		vehicle.Status = *input.Status
	}

	if err := db.Save(&vehicle).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(vehicle)
}

func DeleteVehicle(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	vehicleID, err := uuid.Parse(c.Params("vehicle_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid vehicle ID"})
	}

	result := db.Delete(&database.Vehicle{}, "id = ? AND carrier_id = ?", vehicleID, carrier.ID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Vehicle not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
