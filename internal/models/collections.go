package models

// Collection names as exposed to the consoles
const (
	CollectionLocations            = "locations"
	CollectionProperties           = "properties"
	CollectionPropertyImages       = "property_images"
	CollectionRentalBookings       = "rental_bookings"
	CollectionBookingStatusChanges = "booking_status_changes"
	CollectionCustomerComplaints   = "customer_complaints"
	CollectionInquiries            = "inquiries"
	CollectionErrorLogs            = "error_logs"
	CollectionLiveChatSessions     = "live_chat_sessions"
	CollectionLiveChatMessages     = "live_chat_messages"
	CollectionCSUserSettings       = "cs_user_settings"
	CollectionSEOSettings          = "seo_settings"
	CollectionDeleteLogs           = "delete_logs"
	CollectionStandardizationRuns  = "standardization_runs"
	CollectionPendingOperations    = "pending_operations"
)

// All returns every model migrated by the schema initialiser
func All() []interface{} {
	return []interface{}{
		&Location{},
		&Property{},
		&PropertyImage{},
		&RentalBooking{},
		&BookingStatusChange{},
		&Inquiry{},
		&CustomerComplaint{},
		&ErrorLog{},
		&LiveChatSession{},
		&LiveChatMessage{},
		&CSUserSettings{},
		&SEOSettings{},
		&DeleteLog{},
		&StandardizationRun{},
		&StandardizationStep{},
		&PendingOperation{},
		&SyncState{},
	}
}
