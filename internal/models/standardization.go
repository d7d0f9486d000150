package models

import "time"

// StandardizationRun records one duplicate-province standardization
type StandardizationRun struct {
	ID             string                `gorm:"type:varchar(36);primaryKey" json:"id"`
	GroupKey       string                `gorm:"type:varchar(120);not null;index" json:"group_key"`
	CanonicalName  string                `gorm:"type:varchar(100);not null" json:"canonical_name"`
	Mode           string                `gorm:"type:varchar(10);not null" json:"mode"` // atomic or saga
	Status         string                `gorm:"type:varchar(20);not null;index" json:"status"`
	RowsAffected   int64                 `json:"rows_affected"`
	Error          string                `gorm:"type:text" json:"error,omitempty"`
	Steps          []StandardizationStep `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"steps"`
	StartedAt      time.Time             `gorm:"not null" json:"started_at"`
	FinishedAt     time.Time             `gorm:"not null" json:"finished_at"`
}

// TableName specifies the table name
func (StandardizationRun) TableName() string {
	return "standardization_runs"
}

// StandardizationStep is one spelling rewrite within a run
type StandardizationStep struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string `gorm:"type:varchar(36);not null;index" json:"run_id"`
	Seq          int    `gorm:"not null" json:"seq"`
	FromName     string `gorm:"type:varchar(100);not null" json:"from_name"`
	ToName       string `gorm:"type:varchar(100);not null" json:"to_name"`
	Status       string `gorm:"type:varchar(10);not null" json:"status"` // applied, failed, skipped
	RowsAffected int64  `json:"rows_affected"`
	Error        string `gorm:"type:text" json:"error,omitempty"`
}

// TableName specifies the table name
func (StandardizationStep) TableName() string {
	return "standardization_steps"
}

// Run and step statuses
const (
	RunStatusSucceeded = "succeeded"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"

	StepStatusApplied = "applied"
	StepStatusFailed  = "failed"
	StepStatusSkipped = "skipped"
)
