package main

import (
	"context"

	"gorm.io/gorm"

	"marketplace-console/internal/diagnostics"
	"marketplace-console/internal/models"
	"marketplace-console/internal/store"
)

// table is what the services need from a record collection beyond the basic client
type table[T any] interface {
	store.Collection[T]
	UpdateWhere(ctx context.Context, filters, values map[string]interface{}) (int64, error)
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)
}

type collections struct {
	locations      table[models.Location]
	properties     table[models.Property]
	propertyImages table[models.PropertyImage]
	bookings       table[models.RentalBooking]
	statusChanges  table[models.BookingStatusChange]
	inquiries      table[models.Inquiry]
	tickets        table[models.CustomerComplaint]
	errorLogs      table[models.ErrorLog]
	sessions       table[models.LiveChatSession]
	messages       table[models.LiveChatMessage]
	csSettings     table[models.CSUserSettings]
	seoSettings    table[models.SEOSettings]
	deleteLogs     table[models.DeleteLog]
	runs           table[models.StandardizationRun]
	steps          table[models.StandardizationStep]
	operations     table[models.PendingOperation]
	syncState      table[models.SyncState]

	// locationTable is set for SQL stores, which can rename atomically
	locationTable *store.Table[models.Location]
}

func sqlCollections(db *gorm.DB) *collections {
	locations := store.MustTable[models.Location](db)
	return &collections{
		locations:      locations,
		properties:     store.MustTable[models.Property](db),
		propertyImages: store.MustTable[models.PropertyImage](db),
		bookings:       store.MustTable[models.RentalBooking](db),
		statusChanges:  store.MustTable[models.BookingStatusChange](db),
		inquiries:      store.MustTable[models.Inquiry](db),
		tickets:        store.MustTable[models.CustomerComplaint](db),
		errorLogs:      store.MustTable[models.ErrorLog](db),
		sessions:       store.MustTable[models.LiveChatSession](db),
		messages:       store.MustTable[models.LiveChatMessage](db),
		csSettings:     store.MustTable[models.CSUserSettings](db),
		seoSettings:    store.MustTable[models.SEOSettings](db),
		deleteLogs:     store.MustTable[models.DeleteLog](db),
		runs:           store.MustTable[models.StandardizationRun](db),
		steps:          store.MustTable[models.StandardizationStep](db),
		operations:     store.MustTable[models.PendingOperation](db),
		syncState:      store.MustTable[models.SyncState](db),
		locationTable:  locations,
	}
}

func memoryCollections() *collections {
	return &collections{
		locations:      store.NewMemory[models.Location](models.CollectionLocations),
		properties:     store.NewMemory[models.Property](models.CollectionProperties),
		propertyImages: store.NewMemory[models.PropertyImage](models.CollectionPropertyImages),
		bookings:       store.NewMemory[models.RentalBooking](models.CollectionRentalBookings),
		statusChanges:  store.NewMemory[models.BookingStatusChange](models.CollectionBookingStatusChanges),
		inquiries:      store.NewMemory[models.Inquiry](models.CollectionInquiries),
		tickets:        store.NewMemory[models.CustomerComplaint](models.CollectionCustomerComplaints),
		errorLogs:      store.NewMemory[models.ErrorLog](models.CollectionErrorLogs),
		sessions:       store.NewMemory[models.LiveChatSession](models.CollectionLiveChatSessions),
		messages:       store.NewMemory[models.LiveChatMessage](models.CollectionLiveChatMessages),
		csSettings:     store.NewMemory[models.CSUserSettings](models.CollectionCSUserSettings),
		seoSettings:    store.NewMemory[models.SEOSettings](models.CollectionSEOSettings),
		deleteLogs:     store.NewMemory[models.DeleteLog](models.CollectionDeleteLogs),
		runs:           store.NewMemory[models.StandardizationRun](models.CollectionStandardizationRuns),
		steps:          store.NewMemory[models.StandardizationStep]("standardization_steps"),
		operations:     store.NewMemory[models.PendingOperation](models.CollectionPendingOperations),
		syncState:      store.NewMemory[models.SyncState]("sync_state"),
	}
}

// counted are the collections reported by diagnostics
func (c *collections) counted() []diagnostics.Counter {
	return []diagnostics.Counter{
		c.locations, c.properties, c.bookings, c.inquiries, c.tickets,
		c.errorLogs, c.sessions, c.messages, c.operations,
	}
}
