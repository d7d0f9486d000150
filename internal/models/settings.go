package models

import "time"

// SEOSettings is the site-wide SEO configuration edited from the admin console
type SEOSettings struct {
	ID                     string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SiteTitle              string    `gorm:"type:varchar(255)" json:"site_title"`
	SiteDescription        string    `gorm:"type:text" json:"site_description"`
	Keywords               string    `gorm:"type:text" json:"keywords"`
	OGImageURL             string    `gorm:"type:text" json:"og_image_url"`
	OGEnabled              bool      `gorm:"not null;default:false" json:"og_enabled"`
	TwitterHandle          string    `gorm:"type:varchar(50)" json:"twitter_handle"`
	SchemaEnabled          bool      `gorm:"not null;default:false" json:"schema_enabled"`
	SitemapEnabled         bool      `gorm:"not null;default:false" json:"sitemap_enabled"`
	CanonicalEnabled       bool      `gorm:"not null;default:false" json:"canonical_enabled"`
	RobotsTxt              string    `gorm:"type:text" json:"robots_txt"`
	GoogleAnalyticsID      string    `gorm:"type:varchar(50)" json:"google_analytics_id"`
	GoogleTagManagerID     string    `gorm:"type:varchar(50)" json:"google_tag_manager_id"`
	SearchConsoleCode      string    `gorm:"type:varchar(255)" json:"search_console_code"`
	BingVerificationCode   string    `gorm:"type:varchar(255)" json:"bing_verification_code"`
	FacebookPixelID        string    `gorm:"type:varchar(50)" json:"facebook_pixel_id"`
	DefaultLocale          string    `gorm:"type:varchar(5);default:'id'" json:"default_locale"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (SEOSettings) TableName() string {
	return "seo_settings"
}

// SEOSettingsID is the primary key of the singleton settings row
const SEOSettingsID = "default"

// CSUserSettings holds one customer-service agent's console preferences
type CSUserSettings struct {
	ID                   string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID               string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	DisplayName          string    `gorm:"type:varchar(150)" json:"display_name"`
	Language             string    `gorm:"type:varchar(5);not null;default:'id'" json:"language"`
	MaxConcurrentChats   int       `gorm:"not null;default:3" json:"max_concurrent_chats"`
	AutoAssign           bool      `gorm:"not null;default:true" json:"auto_assign"`
	SoundNotifications   bool      `gorm:"not null;default:true" json:"sound_notifications"`
	EmailNotifications   bool      `gorm:"not null;default:false" json:"email_notifications"`
	AwayMessage          string    `gorm:"type:text" json:"away_message"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (CSUserSettings) TableName() string {
	return "cs_user_settings"
}
