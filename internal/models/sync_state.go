package models

import "time"

// SyncState tracks runs of the location sync procedure
type SyncState struct {
	ID            int        `gorm:"primaryKey" json:"id"`
	LastMode      string     `gorm:"type:varchar(20)" json:"last_mode"`
	LastAttempt   time.Time  `gorm:"not null" json:"last_attempt"`
	LastSuccess   *time.Time `json:"last_success,omitempty"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	FailureCount  int        `gorm:"not null;default:0" json:"failure_count"`
	SuccessCount  int        `gorm:"not null;default:0" json:"success_count"`
	Provinces     int        `json:"provinces"`
	Cities        int        `json:"cities"`
	Districts     int        `json:"districts"`
	Villages      int        `json:"villages"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (SyncState) TableName() string {
	return "sync_state"
}

// SyncStateID is the primary key of the singleton state row
const SyncStateID = 1

// RecordSuccess records a successful sync run
func (s *SyncState) RecordSuccess(mode string, provinces, cities, districts, villages int) {
	now := time.Now()
	s.SuccessCount++
	s.FailureCount = 0 // Reset failure count on success
	s.LastMode = mode
	s.LastAttempt = now
	s.LastSuccess = &now
	s.LastError = ""
	s.Provinces = provinces
	s.Cities = cities
	s.Districts = districts
	s.Villages = villages
}

// RecordFailure records a failed sync run
func (s *SyncState) RecordFailure(mode string, err error) {
	s.FailureCount++
	s.LastMode = mode
	s.LastAttempt = time.Now()
	if err != nil {
		s.LastError = err.Error()
	}
}
