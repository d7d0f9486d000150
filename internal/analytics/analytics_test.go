package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/models"
	"marketplace-console/internal/store"
)

func price(v int64) *int64 { return &v }

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceDistribution(t *testing.T) {
	props := []models.Property{
		{ListingType: models.ListingTypeRent, Status: models.PropertyStatusAvailable, Price: price(400_000)},
		{ListingType: models.ListingTypeRent, Status: models.PropertyStatusAvailable, Price: price(500_000)},
		{ListingType: models.ListingTypeRent, Status: models.PropertyStatusAvailable, Price: price(9_000_000)},
		{ListingType: models.ListingTypeRent, Status: models.PropertyStatusRented, Price: price(400_000)},
		{ListingType: models.ListingTypeRent, Status: models.PropertyStatusAvailable},
		{ListingType: models.ListingTypeSale, Status: models.PropertyStatusAvailable, Price: price(400_000)},
	}

	got := PriceDistribution(props, models.ListingTypeRent, RentPriceRanges)

	counts := make([]int, 0, len(got))
	for _, r := range got {
		counts = append(counts, r.Count)
	}
	assert.Equal(t, []int{1, 1, 0, 0, 1}, counts)
	assert.Zero(t, RentPriceRanges[0].Count, "package ranges must not be mutated")
}

func TestBookings(t *testing.T) {
	now := day(10)
	stats := Bookings([]models.RentalBooking{
		{BookingStatus: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusPaid, TotalAmount: 1000, TotalDays: 2, StartDate: day(12)},
		{BookingStatus: models.BookingStatusPending, PaymentStatus: models.PaymentStatusPending, TotalAmount: 500, TotalDays: 1, StartDate: day(20)},
		{BookingStatus: models.BookingStatusCancelled, PaymentStatus: models.PaymentStatusPaid, TotalAmount: 9999, TotalDays: 9, StartDate: day(11)},
		{BookingStatus: models.BookingStatusCompleted, PaymentStatus: models.PaymentStatusPaid, TotalAmount: 300, TotalDays: 3, StartDate: day(1)},
	}, now)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[models.BookingStatusCancelled])
	assert.Equal(t, int64(1300), stats.PaidRevenue)
	assert.Equal(t, int64(500), stats.PendingRevenue)
	assert.Equal(t, 6, stats.BookedNights)
	assert.Equal(t, 1, stats.UpcomingCheckIns)
}

func TestOccupancy(t *testing.T) {
	bookings := []models.RentalBooking{
		{BookingStatus: models.BookingStatusConfirmed, StartDate: day(1), EndDate: day(6)},
		// clipped to the window
		{BookingStatus: models.BookingStatusConfirmed, StartDate: day(8), EndDate: day(15)},
		{BookingStatus: models.BookingStatusCancelled, StartDate: day(1), EndDate: day(11)},
	}

	assert.InDelta(t, 40.0, Occupancy(bookings, 2, day(1), day(11)), 0.001)
	assert.Zero(t, Occupancy(bookings, 0, day(1), day(11)))
}

func TestSupport(t *testing.T) {
	s := Support(
		[]models.Inquiry{{Status: models.InquiryStatusNew}, {Status: models.InquiryStatusNew}, {Status: models.InquiryStatusClosed}},
		[]models.CustomerComplaint{
			{Status: models.TicketStatusOpen, Priority: "high"},
			{Status: models.TicketStatusInProgress, Priority: "high"},
			{Status: models.TicketStatusResolved, Priority: "low"},
		},
	)

	assert.Equal(t, 2, s.InquiriesByStatus[models.InquiryStatusNew])
	assert.Equal(t, 2, s.TicketsByPriority["high"])
	assert.Equal(t, 2, s.OpenTickets)
}

func TestService_DashboardScopesToAgent(t *testing.T) {
	props := store.NewMemory[models.Property](models.CollectionProperties)
	require.NoError(t, props.Seed(
		models.Property{ID: "p1", AgentID: "a1", Title: "Rumah", ListingType: models.ListingTypeRent, Status: models.PropertyStatusAvailable},
		models.Property{ID: "p2", AgentID: "a2", Title: "Ruko", ListingType: models.ListingTypeSale, Status: models.PropertyStatusSold},
	))
	bookings := store.NewMemory[models.RentalBooking](models.CollectionRentalBookings)
	require.NoError(t, bookings.Seed(
		models.RentalBooking{ID: "b1", PropertyID: "p1", BookingStatus: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusPaid, TotalAmount: 700},
		models.RentalBooking{ID: "b2", PropertyID: "p2", BookingStatus: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusPaid, TotalAmount: 900},
	))
	inquiries := store.NewMemory[models.Inquiry](models.CollectionInquiries)
	tickets := store.NewMemory[models.CustomerComplaint](models.CollectionCustomerComplaints)

	svc := NewService(props, bookings, inquiries, tickets, nil)
	svc.now = func() time.Time { return day(10) }

	d, err := svc.Dashboard(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Properties.Total)
	assert.Equal(t, 1, d.Bookings.Total)
	assert.Equal(t, int64(700), d.Bookings.PaidRevenue)
}
