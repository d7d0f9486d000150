package models

import (
	"time"
)

// PendingOperation is a console mutation queued while the client was offline.
// Operations are replayed in creation order by the queue worker or a manual sync.
type PendingOperation struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Collection  string     `gorm:"type:varchar(50);not null;index:idx_queue_lookup" json:"collection"`
	Operation   string     `gorm:"type:varchar(10);not null" json:"operation"` // create, update, delete
	RecordID    string     `gorm:"type:varchar(36)" json:"record_id,omitempty"`
	Payload     string     `gorm:"type:text" json:"payload,omitempty"` // JSON object of raw form values
	ClientID    string     `gorm:"type:varchar(64);index" json:"client_id,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_status" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	NextRetryAt *time.Time `gorm:"index:idx_retry" json:"next_retry_at,omitempty"`
	ResultID    string     `gorm:"type:varchar(36)" json:"result_id,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (PendingOperation) TableName() string {
	return "pending_operations"
}

// Queued operation kinds
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Status constants
const (
	QueueStatusPending       = "pending"
	QueueStatusProcessing    = "processing"
	QueueStatusDone          = "done"
	QueueStatusFailed        = "failed"
	QueueStatusPermanentFail = "permanent_fail" // validation or not-found failures
)

// MaxRetryAttempts before marking as permanently failed
const MaxRetryAttempts = 5

// GetNextRetryDelay returns the backoff before the given retry
func GetNextRetryDelay(attempts int) time.Duration {
	// 30s, 2min, 10min, 30min, 1h
	delays := []time.Duration{
		30 * time.Second,
		2 * time.Minute,
		10 * time.Minute,
		30 * time.Minute,
		1 * time.Hour,
	}

	if attempts < 0 {
		return delays[0]
	}
	if attempts >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempts]
}
