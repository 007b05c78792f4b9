package shipment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"connectcargo/app/database"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&database.Carrier{},
		&database.Shipment{},
		&database.Quote{},
		&database.TrackingEvent{},
		&database.Review{},
		&database.Payment{},
	)
	require.NoError(t, err)

	return NewService(db)
}

func testShipment() *database.Shipment {
	return &database.Shipment{
		Title:              "Pallets Bogota - Medellin",
		CargoType:          "general",
		OriginAddress:      "Calle 100 #10-20",
		OriginCity:         "Bogota",
		DestinationAddress: "Carrera 43 #5-50",
		DestinationCity:    "Medellin",
		WeightKg:           1200,
		PickupDate:         time.Now().Add(48 * time.Hour),
		DeliveryDeadline:   time.Now().Add(96 * time.Hour),
		OfferedPrice:       950000,
	}
}

func publish(t *testing.T, svc *Service, companyID uuid.UUID) *database.Shipment {
	t.Helper()

	shipment := testShipment()
	require.NoError(t, svc.Publish(companyID, shipment))
	return shipment
}

func TestPublish(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()

	shipment := publish(t, svc, companyID)

	assert.NotEqual(t, uuid.Nil, shipment.ID)
	assert.Equal(t, companyID, shipment.CompanyID)
	assert.Nil(t, shipment.CarrierID)
	assert.Equal(t, database.ShipmentPublished, shipment.Status)
	assert.False(t, shipment.PublishedDate.IsZero())
}

func TestListOpen(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()

	open := publish(t, svc, companyID)
	assigned := publish(t, svc, companyID)
	require.NoError(t, svc.db.Model(assigned).Update("status", database.ShipmentAssigned).Error)

	shipments, err := svc.ListOpen(50)
	require.NoError(t, err)

	require.Len(t, shipments, 1)
	assert.Equal(t, open.ID, shipments[0].ID)
}

func TestSubmitQuote(t *testing.T) {
	svc := testService(t)
	shipment := publish(t, svc, uuid.New())
	carrierID := uuid.New()

	quote, err := svc.SubmitQuote(carrierID, shipment.ID, 800000, nil)
	require.NoError(t, err)

	assert.Equal(t, database.QuotePending, quote.Status)
	assert.Equal(t, carrierID, quote.CarrierID)
	assert.Equal(t, 800000.0, quote.Price)
}

func TestSubmitQuoteTwiceSameCarrier(t *testing.T) {
	svc := testService(t)
	shipment := publish(t, svc, uuid.New())
	carrierID := uuid.New()

	_, err := svc.SubmitQuote(carrierID, shipment.ID, 800000, nil)
	require.NoError(t, err)

	_, err = svc.SubmitQuote(carrierID, shipment.ID, 750000, nil)
	assert.ErrorIs(t, err, ErrQuoteAlreadySubmitted)

	// A second carrier can still bid.
	_, err = svc.SubmitQuote(uuid.New(), shipment.ID, 820000, nil)
	assert.NoError(t, err)
}

func TestSubmitQuoteClosedShipment(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	require.NoError(t, svc.Cancel(companyID, shipment.ID))

	_, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	assert.ErrorIs(t, err, ErrShipmentClosed)
}

func TestSubmitQuoteUnknownShipment(t *testing.T) {
	svc := testService(t)

	_, err := svc.SubmitQuote(uuid.New(), uuid.New(), 800000, nil)
	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestAcceptQuote(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	winner, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)
	loser, err := svc.SubmitQuote(uuid.New(), shipment.ID, 900000, nil)
	require.NoError(t, err)

	assigned, err := svc.AcceptQuote(companyID, winner.ID)
	require.NoError(t, err)

	assert.Equal(t, database.ShipmentAssigned, assigned.Status)
	require.NotNil(t, assigned.CarrierID)
	assert.Equal(t, winner.CarrierID, *assigned.CarrierID)
	require.NotNil(t, assigned.FinalPrice)
	assert.Equal(t, winner.Price, *assigned.FinalPrice)
	assert.NotNil(t, assigned.AssignedDate)

	quotes, err := svc.QuotesForShipment(shipment.ID)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	for _, q := range quotes {
		switch q.ID {
		case winner.ID:
			assert.Equal(t, database.QuoteAccepted, q.Status)
		case loser.ID:
			assert.Equal(t, database.QuoteRejected, q.Status)
		}
	}
}

func TestAcceptQuoteNotOwner(t *testing.T) {
	svc := testService(t)
	shipment := publish(t, svc, uuid.New())

	quote, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)

	_, err = svc.AcceptQuote(uuid.New(), quote.ID)
	assert.ErrorIs(t, err, ErrNotShipmentOwner)

	// Nothing changed.
	stored, err := svc.GetByID(shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, database.ShipmentPublished, stored.Status)
	assert.Nil(t, stored.CarrierID)
}

func TestAcceptQuoteTwice(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	first, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)
	second, err := svc.SubmitQuote(uuid.New(), shipment.ID, 700000, nil)
	require.NoError(t, err)

	_, err = svc.AcceptQuote(companyID, first.ID)
	require.NoError(t, err)

	// The shipment left published, so the second accept is rejected.
	_, err = svc.AcceptQuote(companyID, second.ID)
	assert.Error(t, err)
}

func TestTrackingFlow(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	carrier := &database.Carrier{UserID: uuid.New()}
	require.NoError(t, svc.db.Create(carrier).Error)

	quote, err := svc.SubmitQuote(carrier.ID, shipment.ID, 800000, nil)
	require.NoError(t, err)
	_, err = svc.AcceptQuote(companyID, quote.ID)
	require.NoError(t, err)

	event, err := svc.AddTrackingEvent(carrier.ID, shipment.ID, "Peaje Tunel de Occidente", nil)
	require.NoError(t, err)
	assert.False(t, event.EventTime.IsZero())

	stored, err := svc.GetByID(shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, database.ShipmentInTransit, stored.Status)
	require.NotNil(t, stored.CurrentLocation)
	assert.Equal(t, "Peaje Tunel de Occidente", *stored.CurrentLocation)

	delivered, err := svc.MarkDelivered(carrier.ID, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, database.ShipmentDelivered, delivered.Status)
	assert.NotNil(t, delivered.DeliveredDate)

	var updated database.Carrier
	require.NoError(t, svc.db.First(&updated, "id = ?", carrier.ID).Error)
	assert.Equal(t, 1, updated.CompletedTrips)
}

func TestAddTrackingEventWrongCarrier(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	quote, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)
	_, err = svc.AcceptQuote(companyID, quote.ID)
	require.NoError(t, err)

	_, err = svc.AddTrackingEvent(uuid.New(), shipment.ID, "Girardot", nil)
	assert.ErrorIs(t, err, ErrNotAssignedCarrier)
}

func TestMarkDeliveredBeforeTransit(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	quote, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)
	_, err = svc.AcceptQuote(companyID, quote.ID)
	require.NoError(t, err)

	_, err = svc.MarkDelivered(quote.CarrierID, shipment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	quote, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(companyID, shipment.ID))

	stored, err := svc.GetByID(shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, database.ShipmentCancelled, stored.Status)

	quotes, err := svc.QuotesForShipment(shipment.ID)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, quote.ID, quotes[0].ID)
	assert.Equal(t, database.QuoteRejected, quotes[0].Status)
}

// deliver runs one shipment through quote, assignment, transit and
// delivery, returning the shipment and the carrier profile.
func deliver(t *testing.T, svc *Service, companyID uuid.UUID) (*database.Shipment, *database.Carrier) {
	t.Helper()

	shipment := publish(t, svc, companyID)

	carrier := &database.Carrier{UserID: uuid.New()}
	require.NoError(t, svc.db.Create(carrier).Error)

	quote, err := svc.SubmitQuote(carrier.ID, shipment.ID, 800000, nil)
	require.NoError(t, err)
	_, err = svc.AcceptQuote(companyID, quote.ID)
	require.NoError(t, err)

	_, err = svc.AddTrackingEvent(carrier.ID, shipment.ID, "La Dorada", nil)
	require.NoError(t, err)
	_, err = svc.MarkDelivered(carrier.ID, shipment.ID)
	require.NoError(t, err)

	return shipment, carrier
}

func TestLeaveReview(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, carrier := deliver(t, svc, companyID)

	review, err := svc.LeaveReview(shipment.ID, companyID, carrier.ID, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	var updated database.Carrier
	require.NoError(t, svc.db.First(&updated, "id = ?", carrier.ID).Error)
	assert.Equal(t, 4.0, updated.AverageRating)

	reviews, err := svc.ReviewsForShipment(shipment.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestLeaveReviewTwiceSameAuthor(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, carrier := deliver(t, svc, companyID)

	_, err := svc.LeaveReview(shipment.ID, companyID, carrier.ID, 4, nil)
	require.NoError(t, err)

	_, err = svc.LeaveReview(shipment.ID, companyID, carrier.ID, 5, nil)
	assert.ErrorIs(t, err, ErrReviewAlreadyLeft)

	// The carrier can still rate the company back.
	_, err = svc.LeaveReview(shipment.ID, carrier.ID, companyID, 5, nil)
	assert.NoError(t, err)
}

func TestLeaveReviewBeforeDelivery(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	_, err := svc.LeaveReview(shipment.ID, companyID, uuid.New(), 4, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLeaveReviewInvalidRating(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, carrier := deliver(t, svc, companyID)

	_, err := svc.LeaveReview(shipment.ID, companyID, carrier.ID, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.LeaveReview(shipment.ID, companyID, carrier.ID, 6, nil)
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestCancelAssignedShipment(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment := publish(t, svc, companyID)

	quote, err := svc.SubmitQuote(uuid.New(), shipment.ID, 800000, nil)
	require.NoError(t, err)
	_, err = svc.AcceptQuote(companyID, quote.ID)
	require.NoError(t, err)

	err = svc.Cancel(companyID, shipment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
