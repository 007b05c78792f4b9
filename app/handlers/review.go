package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"connectcargo/app/config"
	"connectcargo/app/platform/shipment"
)

type reviewInput struct {
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// CompanyReviewCarrier lets the shipper rate the carrier after delivery.
func CompanyReviewCarrier(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	var input reviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	svc := shipmentService(c)

	s, err := svc.GetByID(shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}
	if s.CompanyID != company.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}
	if s.CarrierID == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Shipment state does not allow this"})
	}

	review, err := svc.LeaveReview(shipmentID, company.ID, *s.CarrierID, input.Rating, input.Comment)
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

// CarrierReviewCompany lets the carrier rate the shipper after delivery.
func CarrierReviewCompany(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	var input reviewInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	svc := shipmentService(c)

	s, err := svc.GetByID(shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}
	if s.CarrierID == nil || *s.CarrierID != carrier.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}

	review, err := svc.LeaveReview(shipmentID, carrier.ID, s.CompanyID, input.Rating, input.Comment)
	if err != nil {
		return reviewError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func ListShipmentReviews(c *fiber.Ctx) error {
	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	reviews, err := shipmentService(c).ReviewsForShipment(shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(reviews)
}

func reviewError(c *fiber.Ctx, err error) error {
	switch err {
	case shipment.ErrInvalidRating:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case shipment.ErrReviewAlreadyLeft:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "review_already_left"})
	default:
		return shipmentError(c, err)
	}
}
