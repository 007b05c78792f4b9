package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account roles. Exactly one is chosen at registration and never changes.
const (
	RoleCompany = "company"
	RoleCarrier = "carrier"
)

// Account lifecycle states.
const (
	StatusPendingVerification = "pending_verification"
	StatusActive              = "active"
	StatusSuspended           = "suspended"
	StatusInactive            = "inactive"
)

const (
	CompanyTypeNatural = "NATURAL"
	CompanyTypeLegal   = "LEGAL"
)

const (
	CarrierTypeIndividual = "individual"
	CarrierTypeCompany    = "company"
)

// Shipment lifecycle states.
const (
	ShipmentPublished = "published"
	ShipmentAssigned  = "assigned"
	ShipmentInTransit = "in_transit"
	ShipmentDelivered = "delivered"
	ShipmentCancelled = "cancelled"
)

// Quote states.
const (
	QuotePending   = "pending"
	QuoteAccepted  = "accepted"
	QuoteRejected  = "rejected"
	QuoteWithdrawn = "withdrawn"
)

// Payment states.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
	PaymentCancelled  = "cancelled"
)

const (
	PaymentMethodCreditCard      = "credit_card"
	PaymentMethodDebitCard       = "debit_card"
	PaymentMethodBankTransfer    = "bank_transfer"
	PaymentMethodPlatformBalance = "platform_balance"
)

// User represents the authentication identity of one actor, either a
// shipping company or a freight carrier. The role-specific profile lives
// in the Company or Carrier row bound to it.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;<-:create"`

	Phone            string  `json:"phone"`
	AlternativePhone *string `json:"alternative_phone"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Country          string  `json:"country" gorm:"default:'Colombia'"`
	ProfilePicture   *string `json:"profile_picture"`

	AccountStatus    string     `json:"account_status" gorm:"default:'pending_verification'"`
	EmailVerified    bool       `json:"email_verified" gorm:"default:false"`
	VerificationDate *time.Time `json:"-"`
	RegistrationDate time.Time  `json:"registration_date"`

	VerificationToken        *string    `json:"-" gorm:"index"`
	VerificationTokenExpires *time.Time `json:"-"`
	ResetToken               *string    `json:"-" gorm:"index"`
	ResetTokenExpires        *time.Time `json:"-"`

	FailedAttempts int        `json:"-" gorm:"default:0"`
	LockoutDate    *time.Time `json:"-"`
	LastLogin      *time.Time `json:"-"`
	LoginCount     int        `json:"-" gorm:"default:0"`

	AcceptedTerms       bool       `json:"accepted_terms" gorm:"default:false"`
	TermsAcceptanceDate *time.Time `json:"-"`

	Company *Company `json:"company,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Carrier *Carrier `json:"carrier,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now()
	}
	return nil
}

// Company is the shipper profile bound one-to-one to a User with role
// 'company'.
type Company struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`

	LegalName      string  `json:"legal_name" gorm:"not null"`
	CommercialName *string `json:"commercial_name"`
	CompanyType    string  `json:"company_type" gorm:"not null"`
	CompanySize    *string `json:"company_size"`

	Certifications StringArray `json:"certifications" gorm:"type:text[]"`
	CoverageZones  StringArray `json:"coverage_zones" gorm:"type:text[]"`

	CompletedShipments int     `json:"completed_shipments" gorm:"default:0"`
	AverageRating      float64 `json:"average_rating" gorm:"default:0"`
	CompletionRate     float64 `json:"completion_rate" gorm:"default:0"`
}

func (c *Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Carrier is the freight carrier profile bound one-to-one to a User with
// role 'carrier'.
type Carrier struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`

	CarrierType     string     `json:"carrier_type" gorm:"not null;default:'individual'"`
	DriverLicense   *string    `json:"driver_license"`
	LicenseCategory *string    `json:"license_category"`
	LicenseExpiry   *time.Time `json:"license_expiry"`

	ActiveInsurance bool       `json:"active_insurance" gorm:"default:false"`
	InsurancePolicy *string    `json:"insurance_policy"`
	InsuranceExpiry *time.Time `json:"insurance_expiry"`

	YearsExperience int      `json:"years_experience" gorm:"default:0"`
	MaxCapacityKg   *float64 `json:"max_capacity_kg"`

	CompletedTrips int     `json:"completed_trips" gorm:"default:0"`
	AverageRating  float64 `json:"average_rating" gorm:"default:0"`
	DeliveryRate   float64 `json:"delivery_rate" gorm:"default:0"`

	Availability247 bool `json:"availability_24_7" gorm:"default:false"`
}

func (c *Carrier) TableName() string {
	return "carriers"
}

func (c *Carrier) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Vehicle belongs to a carrier's fleet.
type Vehicle struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CarrierID uuid.UUID `json:"carrier_id" gorm:"type:uuid;index;not null"`

	Plate       string   `json:"plate" gorm:"uniqueIndex;not null"`
	VehicleType string   `json:"vehicle_type" gorm:"not null"`
	Brand       *string  `json:"brand"`
	Model       *string  `json:"model"`
	Year        *int     `json:"year"`
	CapacityKg  *float64 `json:"capacity_kg"`
	Status      string   `json:"status" gorm:"default:'available'"`
}

func (v *Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Shipment is a cargo listing published by a company. A carrier is
// assigned once the company accepts one of the submitted quotes.
type Shipment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID  `json:"company_id" gorm:"type:uuid;index;not null"`
	CarrierID *uuid.UUID `json:"carrier_id" gorm:"type:uuid;index"`

	Title       string  `json:"title" gorm:"not null"`
	Description *string `json:"description"`
	CargoType   string  `json:"cargo_type" gorm:"not null"`

	OriginAddress      string `json:"origin_address" gorm:"not null"`
	OriginCity         string `json:"origin_city" gorm:"not null"`
	DestinationAddress string `json:"destination_address" gorm:"not null"`
	DestinationCity    string `json:"destination_city" gorm:"not null"`

	WeightKg            float64  `json:"weight_kg" gorm:"not null"`
	VolumeM3            *float64 `json:"volume_m3"`
	SpecialRequirements *string  `json:"special_requirements"`

	PickupDate       time.Time  `json:"pickup_date" gorm:"not null"`
	DeliveryDeadline time.Time  `json:"delivery_deadline" gorm:"not null"`
	PublishedDate    time.Time  `json:"published_date"`
	AssignedDate     *time.Time `json:"assigned_date"`
	DeliveredDate    *time.Time `json:"delivered_date"`

	OfferedPrice         float64  `json:"offered_price" gorm:"not null"`
	FinalPrice           *float64 `json:"final_price"`
	CommissionPercentage float64  `json:"commission_percentage" gorm:"default:10"`

	Status          string     `json:"status" gorm:"default:'published';index"`
	CurrentLocation *string    `json:"current_location"`
	LastUpdate      time.Time  `json:"last_update"`
	Meta            JSONObject `json:"meta" gorm:"type:jsonb"`
}

func (s *Shipment) TableName() string {
	return "shipments"
}

func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	if s.PublishedDate.IsZero() {
		s.PublishedDate = now
	}
	if s.LastUpdate.IsZero() {
		s.LastUpdate = now
	}
	return nil
}

// Quote is a carrier's bid on a shipment; one per carrier per shipment.
type Quote struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShipmentID uuid.UUID `json:"shipment_id" gorm:"type:uuid;uniqueIndex:idx_quote_shipment_carrier;not null"`
	CarrierID  uuid.UUID `json:"carrier_id" gorm:"type:uuid;uniqueIndex:idx_quote_shipment_carrier;not null"`

	Price   float64 `json:"price" gorm:"not null"`
	Message *string `json:"message"`
	Status  string  `json:"status" gorm:"default:'pending'"`

	CreatedAt time.Time `json:"created_at"`
}

func (q *Quote) TableName() string {
	return "quotes"
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TrackingEvent records a location or status update for a shipment.
type TrackingEvent struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShipmentID uuid.UUID `json:"shipment_id" gorm:"type:uuid;index;not null"`

	Location    string    `json:"location" gorm:"not null"`
	Description *string   `json:"description"`
	EventTime   time.Time `json:"event_time"`
}

func (t *TrackingEvent) TableName() string {
	return "tracking_events"
}

func (t *TrackingEvent) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.EventTime.IsZero() {
		t.EventTime = time.Now()
	}
	return nil
}

// Payment settles a delivered shipment: the company's charge split into
// the platform commission and the carrier payout. One per shipment.
type Payment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShipmentID uuid.UUID `json:"shipment_id" gorm:"type:uuid;uniqueIndex;not null"`
	CompanyID  uuid.UUID `json:"company_id" gorm:"type:uuid;index;not null"`
	CarrierID  uuid.UUID `json:"carrier_id" gorm:"type:uuid;index;not null"`

	Amount           float64 `json:"amount" gorm:"not null"`
	CommissionAmount float64 `json:"commission_amount" gorm:"not null"`
	CarrierPayment   float64 `json:"carrier_payment" gorm:"not null"`

	PaymentMethod *string    `json:"payment_method"`
	TransactionID *string    `json:"transaction_id" gorm:"uniqueIndex"`
	PaymentDate   *time.Time `json:"payment_date"`

	Status       string  `json:"status" gorm:"default:'pending'"`
	FailedReason *string `json:"failed_reason"`

	CreatedDate   time.Time  `json:"created_date"`
	ProcessedDate *time.Time `json:"processed_date"`
}

func (p *Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now()
	}
	return nil
}

// Review is left by the company about the carrier (or the reverse) after
// a delivered shipment.
type Review struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ShipmentID uuid.UUID `json:"shipment_id" gorm:"type:uuid;uniqueIndex:idx_review_shipment_author;not null"`
	AuthorID   uuid.UUID `json:"author_id" gorm:"type:uuid;uniqueIndex:idx_review_shipment_author;not null"`
	SubjectID  uuid.UUID `json:"subject_id" gorm:"type:uuid;index;not null"`

	Rating    int       `json:"rating" gorm:"not null"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) TableName() string {
	return "reviews"
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
