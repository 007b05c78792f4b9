package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"connectcargo/app/config"
	"connectcargo/app/platform/shipment"
)

// GetShipmentPayment returns the settlement record for a shipment the
// caller is a party to.
func GetShipmentPayment(c *fiber.Ctx) error {
	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	payment, err := shipmentService(c).PaymentForShipment(shipmentID)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(payment)
}

// CompanyPayShipment settles the pending payment for a delivered shipment.
func CompanyPayShipment(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	type PaymentInput struct {
		PaymentMethod string `json:"payment_method" validate:"required"`
	}

	var input PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	payment, err := shipmentService(c).CompletePayment(company.ID, shipmentID, input.PaymentMethod)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(payment)
}

func ListCompanyPayments(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	payments, err := shipmentService(c).ListPaymentsByCompany(company.ID)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(payments)
}

func ListCarrierPayments(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	payments, err := shipmentService(c).ListPaymentsByCarrier(carrier.ID)
	if err != nil {
		return paymentError(c, err)
	}

	return c.JSON(payments)
}

func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, shipment.ErrPaymentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	case errors.Is(err, shipment.ErrInvalidPaymentMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return shipmentError(c, err)
	}
}
