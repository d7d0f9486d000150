package models

import "time"

// DeleteLog represents a record of physically deleted rows from any collection
type DeleteLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Collection string    `gorm:"type:varchar(50);not null;index" json:"collection"`
	RecordID   string    `gorm:"type:varchar(36);not null;index" json:"record_id"`
	Summary    string    `gorm:"type:text" json:"summary"`
	DeletedBy  string    `gorm:"type:varchar(36)" json:"deleted_by,omitempty"`
	DeletedAt  time.Time `gorm:"not null;autoCreateTime;index" json:"deleted_at"`
	Reason     string    `gorm:"type:varchar(50);not null" json:"reason"`
}

// TableName specifies the table name
func (DeleteLog) TableName() string {
	return "delete_logs"
}

// DeleteReason constants
const (
	DeleteReasonManual    = "manual_deletion"
	DeleteReasonRetention = "retention_expired"
	DeleteReasonQueued    = "queued_operation"
)
