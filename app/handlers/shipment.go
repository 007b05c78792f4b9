package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"connectcargo/app/config"
	"connectcargo/app/database"
	"connectcargo/app/platform/shipment"
)

func shipmentService(c *fiber.Ctx) *shipment.Service {
	db := c.Locals("db").(*gorm.DB)
	return shipment.NewService(db)
}

func shipmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, shipment.ErrShipmentNotFound), errors.Is(err, shipment.ErrQuoteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	case errors.Is(err, shipment.ErrShipmentClosed), errors.Is(err, shipment.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Shipment state does not allow this"})
	case errors.Is(err, shipment.ErrQuoteAlreadySubmitted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "quote_already_submitted"})
	case errors.Is(err, shipment.ErrNotShipmentOwner), errors.Is(err, shipment.ErrNotAssignedCarrier):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	default:
		log.Errorf("shipment operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func CreateShipment(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	type ShipmentInput struct {
		Title               string    `json:"title" validate:"required"`
		Description         *string   `json:"description"`
		CargoType           string    `json:"cargo_type" validate:"required"`
		OriginAddress       string    `json:"origin_address" validate:"required"`
		OriginCity          string    `json:"origin_city" validate:"required"`
		DestinationAddress  string    `json:"destination_address" validate:"required"`
		DestinationCity     string    `json:"destination_city" validate:"required"`
		WeightKg            float64   `json:"weight_kg" validate:"required,gt=0"`
		VolumeM3            *float64  `json:"volume_m3"`
		SpecialRequirements *string   `json:"special_requirements"`
		PickupDate          time.Time `json:"pickup_date" validate:"required"`
		DeliveryDeadline    time.Time `json:"delivery_deadline" validate:"required"`
		OfferedPrice        float64   `json:"offered_price" validate:"required,gt=0"`
	}

	var input ShipmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if !input.DeliveryDeadline.After(input.PickupDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Delivery deadline must be after pickup date"})
	}

	s := &database.Shipment{
		Title:               input.Title,
		Description:         input.Description,
		CargoType:           input.CargoType,
		OriginAddress:       input.OriginAddress,
		OriginCity:          input.OriginCity,
		DestinationAddress:  input.DestinationAddress,
		DestinationCity:     input.DestinationCity,
		WeightKg:            input.WeightKg,
		VolumeM3:            input.VolumeM3,
		SpecialRequirements: input.SpecialRequirements,
		PickupDate:          input.PickupDate,
		DeliveryDeadline:    input.DeliveryDeadline,
		OfferedPrice:        input.OfferedPrice,
	}

	if err := shipmentService(c).Publish(company.ID, s); err != nil {
		return shipmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(s)
}

func ListCompanyShipments(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipments, err := shipmentService(c).ListByCompany(company.ID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(shipments)
}

// ListCarrierAssignments returns the shipments assigned to the carrier.
func ListCarrierAssignments(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipments, err := shipmentService(c).ListByCarrier(carrier.ID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(shipments)
}

// ListOpenShipments is the carrier-facing marketplace feed.
func ListOpenShipments(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	shipments, err := shipmentService(c).ListOpen(limit)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(shipments)
}

func GetShipment(c *fiber.Ctx) error {
	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	s, err := shipmentService(c).GetByID(shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(s)
}

func CancelShipment(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	if err := shipmentService(c).Cancel(company.ID, shipmentID); err != nil {
		return shipmentError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func SubmitQuote(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	type QuoteInput struct {
		Price   float64 `json:"price" validate:"required,gt=0"`
		Message *string `json:"message"`
	}

	var input QuoteInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	quote, err := shipmentService(c).SubmitQuote(carrier.ID, shipmentID, input.Price, input.Message)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(quote)
}

func ListShipmentQuotes(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	svc := shipmentService(c)

	s, err := svc.GetByID(shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}
	if s.CompanyID != company.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Forbidden"})
	}

	quotes, err := svc.QuotesForShipment(shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(quotes)
}

func AcceptQuote(c *fiber.Ctx) error {
	company, err := companyProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	quoteID, err := uuid.Parse(c.Params("quote_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid quote ID"})
	}

	s, err := shipmentService(c).AcceptQuote(company.ID, quoteID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(s)
}

func AddTrackingEvent(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	type TrackingInput struct {
		Location    string  `json:"location" validate:"required"`
		Description *string `json:"description"`
	}

	var input TrackingInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	if err := config.Validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	event, err := shipmentService(c).AddTrackingEvent(carrier.ID, shipmentID, input.Location, input.Description)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

func ListTrackingEvents(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	var events []database.TrackingEvent
	result := db.Where("shipment_id = ?", shipmentID).Order("event_time ASC").Find(&events)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(events)
}

func MarkShipmentDelivered(c *fiber.Ctx) error {
	carrier, err := carrierProfile(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	shipmentID, err := uuid.Parse(c.Params("shipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shipment ID"})
	}

	s, err := shipmentService(c).MarkDelivered(carrier.ID, shipmentID)
	if err != nil {
		return shipmentError(c, err)
	}

	return c.JSON(s)
}
