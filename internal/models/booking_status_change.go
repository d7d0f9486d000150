package models

import "time"

// BookingStatusChange records one overwrite of a booking status field
type BookingStatusChange struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID string    `gorm:"type:varchar(36);not null;index" json:"booking_id"`
	Field     string    `gorm:"type:varchar(30);not null" json:"field"` // booking_status, payment_status, deposit_status
	OldValue  string    `gorm:"type:varchar(20)" json:"old_value"`
	NewValue  string    `gorm:"type:varchar(20)" json:"new_value"`
	ChangedBy string    `gorm:"type:varchar(36)" json:"changed_by,omitempty"`
	ChangedAt time.Time `gorm:"not null;autoCreateTime;index" json:"changed_at"`
}

// TableName specifies the table name
func (BookingStatusChange) TableName() string {
	return "booking_status_changes"
}

// Booking status fields tracked in history
const (
	FieldBookingStatus = "booking_status"
	FieldPaymentStatus = "payment_status"
	FieldDepositStatus = "deposit_status"
)
