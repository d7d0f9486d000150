package forms

import (
	"time"

	"marketplace-console/internal/models"
)

// LocationForm is the admin location editor
var LocationForm = Schema{
	Name: "location",
	Fields: []Field{
		{Key: "province_name", Kind: Text, Rules: "required,max=100"},
		{Key: "province_code", Kind: Text, Rules: "required,max=10"},
		{Key: "city_name", Kind: Text, Rules: "required,max=100"},
		{Key: "city_code", Kind: Text, Rules: "max=10"},
		{Key: "city_type", Kind: Enum, Options: []string{models.CityTypeKota, models.CityTypeKabupaten}},
		{Key: "district_name", Kind: Text, Rules: "max=100", Nullable: true},
		{Key: "district_code", Kind: Text, Rules: "max=10", Nullable: true},
		{Key: "subdistrict_name", Kind: Text, Rules: "max=100", Nullable: true},
		{Key: "subdistrict_code", Kind: Text, Rules: "max=15", Nullable: true},
		{Key: "postal_code", Kind: Text, Rules: "omitempty,numeric,len=5"},
		{Key: "area_name", Kind: Text, Rules: "max=150"},
		{Key: "population", Kind: Integer, Check: "gte=0"},
		{Key: "area_km2", Kind: Decimal, Check: "gte=0"},
		{Key: "is_capital", Kind: Boolean},
		{Key: "is_active", Kind: Boolean, Default: "true"},
	},
	Rules: []CrossRule{locationHierarchy},
}

// a subdistrict needs a district above it
func locationHierarchy(v Values) []FieldError {
	sub, hasSub := v["subdistrict_name"]
	if !hasSub || sub == nil {
		return nil
	}
	if district, ok := v["district_name"]; ok && district == nil {
		return []FieldError{{Field: "district_name", Message: "is required when a subdistrict is set"}}
	}
	return nil
}

// PropertyForm is the agent listing editor
var PropertyForm = Schema{
	Name: "property",
	Fields: []Field{
		{Key: "agent_id", Kind: Text, Rules: "max=36"},
		{Key: "title", Kind: Text, Rules: "required,max=255"},
		{Key: "description", Kind: Text},
		{Key: "property_type", Kind: Enum, Options: []string{"house", "apartment", "villa", "land", "shophouse", "office", "warehouse"}},
		{Key: "listing_type", Kind: Enum, Rules: "required", Options: []string{string(models.ListingTypeSale), string(models.ListingTypeRent)}},
		{Key: "price", Kind: Integer, Check: "gte=0"},
		{Key: "bedrooms", Kind: Integer, Check: "gte=0,lte=100"},
		{Key: "bathrooms", Kind: Integer, Check: "gte=0,lte=100"},
		{Key: "land_area", Kind: Decimal, Check: "gte=0"},
		{Key: "building_area", Kind: Decimal, Check: "gte=0"},
		{Key: "address", Kind: Text},
		{Key: "city", Kind: Text, Rules: "max=100"},
		{Key: "province", Kind: Text, Rules: "max=100"},
		{Key: "status", Kind: Enum, Options: []string{
			string(models.PropertyStatusAvailable), string(models.PropertyStatusPending),
			string(models.PropertyStatusSold), string(models.PropertyStatusRented),
		}},
		{Key: "is_featured", Kind: Boolean},
	},
}

// PropertyImageForm attaches gallery images to a listing. Sort order 0 is the cover.
var PropertyImageForm = Schema{
	Name: "property_image",
	Fields: []Field{
		{Key: "property_id", Kind: Text, Rules: "required,max=36"},
		{Key: "image_url", Kind: Text, Rules: "required,url"},
		{Key: "sort_order", Kind: Integer, Check: "gte=0"},
	},
}

// BookingForm is the agent booking editor. Customer-facing creation lives elsewhere.
var BookingForm = Schema{
	Name: "booking",
	Fields: []Field{
		{Key: "start_date", Kind: Date},
		{Key: "end_date", Kind: Date},
		{Key: "total_amount", Kind: Integer, Check: "gte=0"},
		{Key: "deposit_amount", Kind: Integer, Check: "gte=0"},
		{Key: "booking_status", Kind: Enum, Options: models.BookingStatuses},
		{Key: "payment_status", Kind: Enum, Options: models.PaymentStatuses},
		{Key: "deposit_status", Kind: Enum, Options: models.DepositStatuses},
		{Key: "contact_method", Kind: Enum, Options: []string{"phone", "email", "whatsapp"}},
		{Key: "special_request", Kind: Text},
	},
	Rules: []CrossRule{bookingDates},
}

func bookingDates(v Values) []FieldError {
	start, ok1 := v["start_date"].(time.Time)
	end, ok2 := v["end_date"].(time.Time)
	if ok1 && ok2 && !end.After(start) {
		return []FieldError{{Field: "end_date", Message: "must be after start_date"}}
	}
	return nil
}

// InquiryForm is the inquiry editor
var InquiryForm = Schema{
	Name: "inquiry",
	Fields: []Field{
		{Key: "property_id", Kind: Text, Rules: "max=36"},
		{Key: "agent_id", Kind: Text, Rules: "max=36"},
		{Key: "name", Kind: Text, Rules: "required,max=150"},
		{Key: "email", Kind: Text, Rules: "required,email"},
		{Key: "phone", Kind: Text, Rules: "max=30"},
		{Key: "message", Kind: Text, Rules: "required"},
		{Key: "status", Kind: Enum, Options: models.InquiryStatuses},
	},
}

// TicketForm is the customer-service ticket editor
var TicketForm = Schema{
	Name: "ticket",
	Fields: []Field{
		{Key: "customer_id", Kind: Text, Rules: "max=36"},
		{Key: "subject", Kind: Text, Rules: "required,max=255"},
		{Key: "description", Kind: Text, Rules: "required"},
		{Key: "category", Kind: Text, Rules: "max=50"},
		{Key: "priority", Kind: Enum, Options: models.TicketPriorities},
		{Key: "status", Kind: Enum, Options: models.TicketStatuses},
		{Key: "assigned_to", Kind: Text, Rules: "max=36"},
		{Key: "resolution", Kind: Text},
	},
}

// ErrorLogForm is the error log editor
var ErrorLogForm = Schema{
	Name: "error_log",
	Fields: []Field{
		{Key: "level", Kind: Enum, Options: models.ErrorLevels},
		{Key: "message", Kind: Text, Rules: "required"},
		{Key: "source", Kind: Text, Rules: "max=255"},
		{Key: "stack", Kind: Text},
		{Key: "user_id", Kind: Text, Rules: "max=36"},
		{Key: "is_resolved", Kind: Boolean},
	},
}

// SEOSettingsForm is the SEO settings editor
var SEOSettingsForm = Schema{
	Name: "seo_settings",
	Fields: []Field{
		{Key: "site_title", Kind: Text, Rules: "max=255"},
		{Key: "site_description", Kind: Text},
		{Key: "keywords", Kind: Text},
		{Key: "og_image_url", Kind: Text, Rules: "omitempty,url"},
		{Key: "og_enabled", Kind: Boolean},
		{Key: "twitter_handle", Kind: Text, Rules: "max=50"},
		{Key: "schema_enabled", Kind: Boolean},
		{Key: "sitemap_enabled", Kind: Boolean},
		{Key: "canonical_enabled", Kind: Boolean},
		{Key: "robots_txt", Kind: Text},
		{Key: "google_analytics_id", Kind: Text, Rules: "max=50"},
		{Key: "google_tag_manager_id", Kind: Text, Rules: "max=50"},
		{Key: "search_console_code", Kind: Text, Rules: "max=255"},
		{Key: "bing_verification_code", Kind: Text, Rules: "max=255"},
		{Key: "facebook_pixel_id", Kind: Text, Rules: "max=50"},
		{Key: "default_locale", Kind: Enum, Options: []string{"en", "id"}},
	},
}

// CSSettingsForm is the customer-service agent preferences editor
var CSSettingsForm = Schema{
	Name: "cs_settings",
	Fields: []Field{
		{Key: "display_name", Kind: Text, Rules: "max=150"},
		{Key: "language", Kind: Enum, Options: []string{"en", "id"}},
		{Key: "max_concurrent_chats", Kind: Integer, Check: "gte=1,lte=20"},
		{Key: "auto_assign", Kind: Boolean},
		{Key: "sound_notifications", Kind: Boolean},
		{Key: "email_notifications", Kind: Boolean},
		{Key: "away_message", Kind: Text},
	},
}

// ChatMessageForm is an agent reply in live chat
var ChatMessageForm = Schema{
	Name: "chat_message",
	Fields: []Field{
		{Key: "sender_id", Kind: Text, Rules: "max=36"},
		{Key: "message", Kind: Text, Rules: "required,max=4000"},
	},
}

// ByCollection maps collection names to their editor schema
var ByCollection = map[string]Schema{
	models.CollectionLocations:          LocationForm,
	models.CollectionProperties:         PropertyForm,
	models.CollectionPropertyImages:     PropertyImageForm,
	models.CollectionRentalBookings:     BookingForm,
	models.CollectionInquiries:          InquiryForm,
	models.CollectionCustomerComplaints: TicketForm,
	models.CollectionErrorLogs:          ErrorLogForm,
}
