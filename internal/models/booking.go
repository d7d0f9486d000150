package models

import "time"

// BookingStatus is the reservation lifecycle status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaymentStatus is the rent payment status
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DepositStatus is the security deposit status
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusPaid     DepositStatus = "paid"
	DepositStatusRefunded DepositStatus = "refunded"
)

// BookingStatuses lists the allowed booking_status values
var BookingStatuses = []string{
	string(BookingStatusPending), string(BookingStatusConfirmed),
	string(BookingStatusCancelled), string(BookingStatusCompleted),
}

// PaymentStatuses lists the allowed payment_status values
var PaymentStatuses = []string{
	string(PaymentStatusPending), string(PaymentStatusPaid),
	string(PaymentStatusFailed), string(PaymentStatusRefunded),
}

// DepositStatuses lists the allowed deposit_status values
var DepositStatuses = []string{
	string(DepositStatusPending), string(DepositStatusPaid), string(DepositStatusRefunded),
}

// RentalBooking is a reservation of a rental listing.
// Status fields are independent and overwritten directly; no transition is guarded.
type RentalBooking struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string `gorm:"type:varchar(36);not null;index" json:"property_id"`
	CustomerID string `gorm:"type:varchar(36);not null;index" json:"customer_id"`

	StartDate     time.Time `gorm:"not null;index" json:"start_date"`
	EndDate       time.Time `gorm:"not null" json:"end_date"`
	TotalDays     int       `gorm:"not null;default:0" json:"total_days"`
	TotalAmount   int64     `gorm:"not null;default:0" json:"total_amount"`
	DepositAmount *int64    `json:"deposit_amount,omitempty"`

	DepositStatus DepositStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"deposit_status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	BookingStatus BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"booking_status"`

	ContactMethod  string `gorm:"type:varchar(20)" json:"contact_method,omitempty"`
	SpecialRequest string `gorm:"type:text" json:"special_request,omitempty"`
	TermsAccepted  bool   `gorm:"not null;default:false" json:"terms_accepted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (RentalBooking) TableName() string {
	return "rental_bookings"
}
