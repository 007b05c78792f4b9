package shipment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"connectcargo/app/database"
)

var (
	ErrShipmentNotFound      = errors.New("shipment not found")
	ErrShipmentClosed        = errors.New("shipment no longer accepts quotes")
	ErrQuoteNotFound         = errors.New("quote not found")
	ErrQuoteAlreadySubmitted = errors.New("quote already submitted for this shipment")
	ErrNotShipmentOwner      = errors.New("shipment belongs to another company")
	ErrNotAssignedCarrier    = errors.New("shipment is assigned to another carrier")
	ErrInvalidTransition     = errors.New("invalid shipment status transition")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
	ErrReviewAlreadyLeft     = errors.New("review already left for this shipment")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Publish creates a new listing owned by the company.
func (s *Service) Publish(companyID uuid.UUID, shipment *database.Shipment) error {
	shipment.CompanyID = companyID
	shipment.CarrierID = nil
	shipment.Status = database.ShipmentPublished

	return s.db.Create(shipment).Error
}

// ListOpen returns listings still accepting quotes, newest first.
func (s *Service) ListOpen(limit int) ([]database.Shipment, error) {
	var shipments []database.Shipment

	result := s.db.Where("status = ?", database.ShipmentPublished).
		Order("published_date DESC").
		Limit(limit).
		Find(&shipments)

	return shipments, result.Error
}

func (s *Service) ListByCompany(companyID uuid.UUID) ([]database.Shipment, error) {
	var shipments []database.Shipment

	result := s.db.Where("company_id = ?", companyID).
		Order("published_date DESC").
		Find(&shipments)

	return shipments, result.Error
}

func (s *Service) ListByCarrier(carrierID uuid.UUID) ([]database.Shipment, error) {
	var shipments []database.Shipment

	result := s.db.Where("carrier_id = ?", carrierID).
		Order("published_date DESC").
		Find(&shipments)

	return shipments, result.Error
}

func (s *Service) GetByID(shipmentID uuid.UUID) (*database.Shipment, error) {
	var shipment database.Shipment

	result := s.db.First(&shipment, "id = ?", shipmentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, result.Error
	}
	return &shipment, nil
}

// SubmitQuote records a carrier's bid. One bid per carrier per shipment;
// the composite unique index closes the race window.
func (s *Service) SubmitQuote(carrierID, shipmentID uuid.UUID, price float64, message *string) (*database.Quote, error) {
	shipment, err := s.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}

	if shipment.Status != database.ShipmentPublished {
		return nil, ErrShipmentClosed
	}

	quote := &database.Quote{
		ShipmentID: shipmentID,
		CarrierID:  carrierID,
		Price:      price,
		Message:    message,
		Status:     database.QuotePending,
	}

	if err := s.db.Create(quote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrQuoteAlreadySubmitted
		}
		return nil, err
	}

	return quote, nil
}

func (s *Service) QuotesForShipment(shipmentID uuid.UUID) ([]database.Quote, error) {
	var quotes []database.Quote

	result := s.db.Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&quotes)

	return quotes, result.Error
}

// AcceptQuote assigns the winning carrier. Accepting the quote, rejecting
// the siblings and moving the shipment to assigned happen in one
// transaction; no reader observes a half-assigned shipment.
func (s *Service) AcceptQuote(companyID, quoteID uuid.UUID) (*database.Shipment, error) {
	var shipment database.Shipment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var quote database.Quote
		result := tx.First(&quote, "id = ?", quoteID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrQuoteNotFound
			}
			return result.Error
		}

		result = tx.First(&shipment, "id = ?", quote.ShipmentID)
		if result.Error != nil {
			return result.Error
		}

		if shipment.CompanyID != companyID {
			return ErrNotShipmentOwner
		}
		if shipment.Status != database.ShipmentPublished {
			return ErrInvalidTransition
		}
		if quote.Status != database.QuotePending {
			return ErrQuoteNotFound
		}

		if err := tx.Model(&quote).Update("status", database.QuoteAccepted).Error; err != nil {
			return err
		}

		err := tx.Model(&database.Quote{}).
			Where("shipment_id = ? AND id <> ? AND status = ?", shipment.ID, quote.ID, database.QuotePending).
			Update("status", database.QuoteRejected).Error
		if err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&shipment).Updates(map[string]any{
			"carrier_id":    quote.CarrierID,
			"status":        database.ShipmentAssigned,
			"assigned_date": now,
			"final_price":   quote.Price,
			"last_update":   now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &shipment, nil
}

// AddTrackingEvent appends a location update from the assigned carrier and
// moves an assigned shipment into transit.
func (s *Service) AddTrackingEvent(carrierID, shipmentID uuid.UUID, location string, description *string) (*database.TrackingEvent, error) {
	shipment, err := s.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}

	if shipment.CarrierID == nil || *shipment.CarrierID != carrierID {
		return nil, ErrNotAssignedCarrier
	}

	switch shipment.Status {
	case database.ShipmentAssigned, database.ShipmentInTransit:
	default:
		return nil, ErrInvalidTransition
	}

	event := &database.TrackingEvent{
		ShipmentID:  shipmentID,
		Location:    location,
		Description: description,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Model(shipment).Updates(map[string]any{
			"status":           database.ShipmentInTransit,
			"current_location": location,
			"last_update":      time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// MarkDelivered closes out an in-transit shipment.
func (s *Service) MarkDelivered(carrierID, shipmentID uuid.UUID) (*database.Shipment, error) {
	shipment, err := s.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}

	if shipment.CarrierID == nil || *shipment.CarrierID != carrierID {
		return nil, ErrNotAssignedCarrier
	}
	if shipment.Status != database.ShipmentInTransit {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(shipment).Updates(map[string]any{
			"status":         database.ShipmentDelivered,
			"delivered_date": now,
			"last_update":    now,
		}).Error; err != nil {
			return err
		}

		err := tx.Model(&database.Carrier{}).
			Where("id = ?", carrierID).
			Update("completed_trips", gorm.Expr("completed_trips + ?", 1)).Error
		if err != nil {
			return err
		}

		return createPayment(tx, shipment)
	})
	if err != nil {
		return nil, err
	}

	return shipment, nil
}

// LeaveReview records a rating on a delivered shipment. One review per
// author per shipment; the composite unique index backs the check. When
// the subject is the assigned carrier, their average rating is refreshed
// in the same transaction.
func (s *Service) LeaveReview(shipmentID, authorID, subjectID uuid.UUID, rating int, comment *string) (*database.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	shipment, err := s.GetByID(shipmentID)
	if err != nil {
		return nil, err
	}

	if shipment.Status != database.ShipmentDelivered {
		return nil, ErrInvalidTransition
	}

	review := &database.Review{
		ShipmentID: shipmentID,
		AuthorID:   authorID,
		SubjectID:  subjectID,
		Rating:     rating,
		Comment:    comment,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrReviewAlreadyLeft
			}
			return err
		}

		if shipment.CarrierID == nil || *shipment.CarrierID != subjectID {
			return nil
		}

		var avg float64
		err := tx.Model(&database.Review{}).
			Where("subject_id = ?", subjectID).
			Select("AVG(rating)").
			Scan(&avg).Error
		if err != nil {
			return err
		}

		return tx.Model(&database.Carrier{}).
			Where("id = ?", subjectID).
			Update("average_rating", avg).Error
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) ReviewsForShipment(shipmentID uuid.UUID) ([]database.Review, error) {
	var reviews []database.Review

	result := s.db.Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&reviews)

	return reviews, result.Error
}

// Cancel withdraws a listing before a carrier is assigned.
func (s *Service) Cancel(companyID, shipmentID uuid.UUID) error {
	shipment, err := s.GetByID(shipmentID)
	if err != nil {
		return err
	}

	if shipment.CompanyID != companyID {
		return ErrNotShipmentOwner
	}
	if shipment.Status != database.ShipmentPublished {
		return ErrInvalidTransition
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(shipment).Updates(map[string]any{
			"status":      database.ShipmentCancelled,
			"last_update": time.Now(),
		}).Error; err != nil {
			return err
		}

		return tx.Model(&database.Quote{}).
			Where("shipment_id = ? AND status = ?", shipment.ID, database.QuotePending).
			Update("status", database.QuoteRejected).Error
	})
}
