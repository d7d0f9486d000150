package models

import (
	"errors"
	"strings"
	"time"
)

// Second-level administrative unit types
const (
	CityTypeKota      = "KOTA"
	CityTypeKabupaten = "KABUPATEN"
)

// Location is one administrative unit leaf: province > city > district > subdistrict
type Location struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`

	ProvinceName string `gorm:"type:varchar(100);not null;index" json:"province_name"`
	ProvinceCode string `gorm:"type:varchar(10);not null;index" json:"province_code"`

	CityName string `gorm:"type:varchar(100);not null;index" json:"city_name"`
	CityCode string `gorm:"type:varchar(10)" json:"city_code"`
	CityType string `gorm:"type:varchar(20)" json:"city_type"`

	DistrictName    *string `gorm:"type:varchar(100)" json:"district_name,omitempty"`
	DistrictCode    *string `gorm:"type:varchar(10)" json:"district_code,omitempty"`
	SubdistrictName *string `gorm:"type:varchar(100)" json:"subdistrict_name,omitempty"`
	SubdistrictCode *string `gorm:"type:varchar(15)" json:"subdistrict_code,omitempty"`

	PostalCode string   `gorm:"type:varchar(10)" json:"postal_code,omitempty"`
	AreaName   string   `gorm:"type:varchar(150)" json:"area_name,omitempty"`
	Population *int     `json:"population,omitempty"`
	AreaKm2    *float64 `gorm:"type:decimal(12,2)" json:"area_km2,omitempty"`
	IsCapital  bool     `gorm:"not null;default:false" json:"is_capital"`
	IsActive   bool     `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (Location) TableName() string {
	return "locations"
}

// ErrBrokenHierarchy is returned when a lower administrative level is set without its parent
var ErrBrokenHierarchy = errors.New("location hierarchy requires province, city and district above a subdistrict")

// Validate checks the province ⊇ city ⊇ district ⊇ subdistrict chain
func (l *Location) Validate() error {
	if strings.TrimSpace(l.ProvinceName) == "" || strings.TrimSpace(l.CityName) == "" {
		return ErrBrokenHierarchy
	}
	if l.SubdistrictName != nil && *l.SubdistrictName != "" {
		if l.DistrictName == nil || *l.DistrictName == "" {
			return ErrBrokenHierarchy
		}
	}
	return nil
}

// NormalizedProvinceName is the grouping key form of the province name. It is never persisted.
func (l *Location) NormalizedProvinceName() string {
	return NormalizeProvinceName(l.ProvinceName)
}

// NormalizeProvinceName uppercases and trims a province name
func NormalizeProvinceName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
