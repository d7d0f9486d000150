package models

import "time"

// Inquiry is a prospect's question about a listing
type Inquiry struct {
	ID         string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	PropertyID string        `gorm:"type:varchar(36);index" json:"property_id,omitempty"`
	AgentID    string        `gorm:"type:varchar(36);index" json:"agent_id,omitempty"`
	Name       string        `gorm:"type:varchar(150);not null" json:"name"`
	Email      string        `gorm:"type:varchar(255);not null" json:"email"`
	Phone      string        `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Message    string        `gorm:"type:text;not null" json:"message"`
	Status     InquiryStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CreatedAt  time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// InquiryStatus tracks agent follow-up
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// InquiryStatuses lists the allowed inquiry statuses
var InquiryStatuses = []string{string(InquiryStatusNew), string(InquiryStatusContacted), string(InquiryStatusClosed)}

// TableName specifies the table name
func (Inquiry) TableName() string {
	return "inquiries"
}

// CustomerComplaint is a customer-service ticket
type CustomerComplaint struct {
	ID          string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerID  string       `gorm:"type:varchar(36);index" json:"customer_id,omitempty"`
	Subject     string       `gorm:"type:varchar(255);not null" json:"subject"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Category    string       `gorm:"type:varchar(50);index" json:"category,omitempty"`
	Priority    string       `gorm:"type:varchar(10);not null;default:'medium';index" json:"priority"`
	Status      TicketStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	AssignedTo  string       `gorm:"type:varchar(36);index" json:"assigned_to,omitempty"`
	Resolution  string       `gorm:"type:text" json:"resolution,omitempty"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TicketStatus is the ticket lifecycle status
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists the allowed ticket statuses
var TicketStatuses = []string{
	string(TicketStatusOpen), string(TicketStatusInProgress),
	string(TicketStatusResolved), string(TicketStatusClosed),
}

// TicketPriorities lists the allowed ticket priorities
var TicketPriorities = []string{"low", "medium", "high", "urgent"}

// TableName specifies the table name
func (CustomerComplaint) TableName() string {
	return "customer_complaints"
}

// ErrorLog is an application error entry managed from the diagnostics console
type ErrorLog struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Level      string     `gorm:"type:varchar(10);not null;default:'error';index" json:"level"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Source     string     `gorm:"type:varchar(255)" json:"source,omitempty"`
	Stack      string     `gorm:"type:text" json:"stack,omitempty"`
	UserID     string     `gorm:"type:varchar(36)" json:"user_id,omitempty"`
	IsResolved bool       `gorm:"not null;default:false;index" json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ErrorLevels lists the allowed error log levels
var ErrorLevels = []string{"debug", "info", "warning", "error", "critical"}

// TableName specifies the table name
func (ErrorLog) TableName() string {
	return "error_logs"
}
