package models

import "time"

// LiveChatSession is a customer conversation handled by a CS agent
type LiveChatSession struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerID    string     `gorm:"type:varchar(36);index" json:"customer_id,omitempty"`
	CustomerName  string     `gorm:"type:varchar(150)" json:"customer_name,omitempty"`
	AgentID       string     `gorm:"type:varchar(36);index" json:"agent_id,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Chat session statuses
const (
	ChatStatusWaiting = "waiting"
	ChatStatusActive  = "active"
	ChatStatusClosed  = "closed"
)

// TableName specifies the table name
func (LiveChatSession) TableName() string {
	return "live_chat_sessions"
}

// LiveChatMessage is one message in a chat session
type LiveChatMessage struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SessionID  string    `gorm:"type:varchar(36);not null;index" json:"session_id"`
	SenderID   string    `gorm:"type:varchar(36)" json:"sender_id,omitempty"`
	SenderType string    `gorm:"type:varchar(10);not null" json:"sender_type"` // customer, agent, system
	Message    string    `gorm:"type:text;not null" json:"message"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (LiveChatMessage) TableName() string {
	return "live_chat_messages"
}
