package models

import "time"

// PropertyImage represents an image associated with a property listing
type PropertyImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(36);not null;index" json:"property_id"`
	ImageURL   string    `gorm:"type:text;not null" json:"image_url"`
	SortOrder  int       `gorm:"not null;default:0;index" json:"sort_order"` // 0 = cover
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for PropertyImage
func (PropertyImage) TableName() string {
	return "property_images"
}

// IsCover returns true if this is the listing's cover image
func (pi *PropertyImage) IsCover() bool {
	return pi.SortOrder == 0
}
