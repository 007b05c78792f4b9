package shipment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectcargo/app/database"
)

func TestDeliveryOpensPayment(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, carrier := deliver(t, svc, companyID)

	payment, err := svc.PaymentForShipment(shipment.ID)
	require.NoError(t, err)

	assert.Equal(t, database.PaymentPending, payment.Status)
	assert.Equal(t, companyID, payment.CompanyID)
	assert.Equal(t, carrier.ID, payment.CarrierID)

	// Accepted quote of 800000 against the default 10% commission.
	assert.Equal(t, 800000.0, payment.Amount)
	assert.Equal(t, 80000.0, payment.CommissionAmount)
	assert.Equal(t, 720000.0, payment.CarrierPayment)

	assert.Nil(t, payment.TransactionID)
	assert.Nil(t, payment.PaymentDate)
}

func TestCompletePayment(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, _ := deliver(t, svc, companyID)

	payment, err := svc.CompletePayment(companyID, shipment.ID, database.PaymentMethodBankTransfer)
	require.NoError(t, err)

	assert.Equal(t, database.PaymentCompleted, payment.Status)
	require.NotNil(t, payment.PaymentMethod)
	assert.Equal(t, database.PaymentMethodBankTransfer, *payment.PaymentMethod)
	assert.NotNil(t, payment.TransactionID)
	assert.NotNil(t, payment.PaymentDate)
	assert.NotNil(t, payment.ProcessedDate)
}

func TestCompletePaymentTwice(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, _ := deliver(t, svc, companyID)

	_, err := svc.CompletePayment(companyID, shipment.ID, database.PaymentMethodCreditCard)
	require.NoError(t, err)

	_, err = svc.CompletePayment(companyID, shipment.ID, database.PaymentMethodCreditCard)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompletePaymentNotOwner(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, _ := deliver(t, svc, companyID)

	_, err := svc.CompletePayment(uuid.New(), shipment.ID, database.PaymentMethodCreditCard)
	assert.ErrorIs(t, err, ErrNotShipmentOwner)

	payment, err := svc.PaymentForShipment(shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, database.PaymentPending, payment.Status)
}

func TestCompletePaymentInvalidMethod(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	shipment, _ := deliver(t, svc, companyID)

	_, err := svc.CompletePayment(companyID, shipment.ID, "cash")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPaymentForShipmentBeforeDelivery(t *testing.T) {
	svc := testService(t)
	shipment := publish(t, svc, uuid.New())

	_, err := svc.PaymentForShipment(shipment.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestListPayments(t *testing.T) {
	svc := testService(t)
	companyID := uuid.New()
	_, carrier := deliver(t, svc, companyID)

	byCompany, err := svc.ListPaymentsByCompany(companyID)
	require.NoError(t, err)
	assert.Len(t, byCompany, 1)

	byCarrier, err := svc.ListPaymentsByCarrier(carrier.ID)
	require.NoError(t, err)
	assert.Len(t, byCarrier, 1)

	other, err := svc.ListPaymentsByCarrier(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
