package shipment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"connectcargo/app/database"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// createPayment opens the settlement record for a delivered shipment.
// The commission is taken from the shipment's percentage against the
// final price; the remainder is the carrier payout.
func createPayment(tx *gorm.DB, shipment *database.Shipment) error {
	amount := shipment.OfferedPrice
	if shipment.FinalPrice != nil {
		amount = *shipment.FinalPrice
	}

	commission := amount * shipment.CommissionPercentage / 100

	payment := &database.Payment{
		ShipmentID:       shipment.ID,
		CompanyID:        shipment.CompanyID,
		CarrierID:        *shipment.CarrierID,
		Amount:           amount,
		CommissionAmount: commission,
		CarrierPayment:   amount - commission,
		Status:           database.PaymentPending,
	}

	return tx.Create(payment).Error
}

func (s *Service) PaymentForShipment(shipmentID uuid.UUID) (*database.Payment, error) {
	var payment database.Payment

	result := s.db.First(&payment, "shipment_id = ?", shipmentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, result.Error
	}
	return &payment, nil
}

// CompletePayment settles a pending payment. The status flip is guarded
// on the pending state, so a payment settles at most once.
func (s *Service) CompletePayment(companyID, shipmentID uuid.UUID, method string) (*database.Payment, error) {
	switch method {
	case database.PaymentMethodCreditCard, database.PaymentMethodDebitCard,
		database.PaymentMethodBankTransfer, database.PaymentMethodPlatformBalance:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	payment, err := s.PaymentForShipment(shipmentID)
	if err != nil {
		return nil, err
	}

	if payment.CompanyID != companyID {
		return nil, ErrNotShipmentOwner
	}

	now := time.Now()
	transactionID := uuid.NewString()

	settle := s.db.Model(&database.Payment{}).
		Where("id = ? AND status = ?", payment.ID, database.PaymentPending).
		Updates(map[string]any{
			"status":         database.PaymentCompleted,
			"payment_method": method,
			"transaction_id": transactionID,
			"payment_date":   now,
			"processed_date": now,
		})
	if settle.Error != nil {
		return nil, settle.Error
	}
	if settle.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	payment.Status = database.PaymentCompleted
	payment.PaymentMethod = &method
	payment.TransactionID = &transactionID
	payment.PaymentDate = &now
	payment.ProcessedDate = &now

	return payment, nil
}

func (s *Service) ListPaymentsByCompany(companyID uuid.UUID) ([]database.Payment, error) {
	var payments []database.Payment

	result := s.db.Where("company_id = ?", companyID).
		Order("created_date DESC").
		Find(&payments)

	return payments, result.Error
}

func (s *Service) ListPaymentsByCarrier(carrierID uuid.UUID) ([]database.Payment, error) {
	var payments []database.Payment

	result := s.db.Where("carrier_id = ?", carrierID).
		Order("created_date DESC").
		Find(&payments)

	return payments, result.Error
}
