package models

import "time"

// Property is an agent-managed listing
type Property struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	AgentID     string `gorm:"type:varchar(36);index" json:"agent_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	PropertyType string      `gorm:"type:varchar(30);index" json:"property_type"`
	ListingType  ListingType `gorm:"type:varchar(10);not null;index" json:"listing_type"`

	// 価格・面積
	Price        *int64   `gorm:"index" json:"price,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	LandArea     *float64 `gorm:"type:decimal(10,2)" json:"land_area,omitempty"`
	BuildingArea *float64 `gorm:"type:decimal(10,2)" json:"building_area,omitempty"`

	Address  string `gorm:"type:text" json:"address,omitempty"`
	City     string `gorm:"type:varchar(100);index" json:"city,omitempty"`
	Province string `gorm:"type:varchar(100);index" json:"province,omitempty"`

	Status     PropertyStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	IsFeatured bool           `gorm:"not null;default:false" json:"is_featured"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PropertyStatus は物件のステータス
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusPending   PropertyStatus = "pending"
	PropertyStatusSold      PropertyStatus = "sold"
	PropertyStatusRented    PropertyStatus = "rented"
)

// ListingType distinguishes sale from rental listings
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

// TableName はテーブル名を明示的に指定
func (Property) TableName() string {
	return "properties"
}

// IsAvailable reports whether the listing can still be booked or bought
func (p *Property) IsAvailable() bool {
	return p.Status == PropertyStatusAvailable
}
