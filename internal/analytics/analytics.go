package analytics

import (
	"time"

	"marketplace-console/internal/models"
)

// PriceRange is one bucket of the listing price distribution. Max is exclusive; 0 means unbounded.
type PriceRange struct {
	RangeLabel string `json:"range_label"`
	MinPrice   int64  `json:"min_price"`
	MaxPrice   int64  `json:"max_price"`
	Count      int    `json:"count"`
}

// Price ranges in rupiah
var (
	SalePriceRanges = []PriceRange{
		{RangeLabel: "< Rp 500 jt", MinPrice: 0, MaxPrice: 500_000_000},
		{RangeLabel: "Rp 500 jt - 1 M", MinPrice: 500_000_000, MaxPrice: 1_000_000_000},
		{RangeLabel: "Rp 1 - 2 M", MinPrice: 1_000_000_000, MaxPrice: 2_000_000_000},
		{RangeLabel: "Rp 2 - 5 M", MinPrice: 2_000_000_000, MaxPrice: 5_000_000_000},
		{RangeLabel: "> Rp 5 M", MinPrice: 5_000_000_000},
	}
	RentPriceRanges = []PriceRange{
		{RangeLabel: "< Rp 500 rb", MinPrice: 0, MaxPrice: 500_000},
		{RangeLabel: "Rp 500 rb - 1 jt", MinPrice: 500_000, MaxPrice: 1_000_000},
		{RangeLabel: "Rp 1 - 2.5 jt", MinPrice: 1_000_000, MaxPrice: 2_500_000},
		{RangeLabel: "Rp 2.5 - 5 jt", MinPrice: 2_500_000, MaxPrice: 5_000_000},
		{RangeLabel: "> Rp 5 jt", MinPrice: 5_000_000},
	}
)

// PriceDistribution counts available listings of one listing type per price range
func PriceDistribution(properties []models.Property, listing models.ListingType, ranges []PriceRange) []PriceRange {
	out := make([]PriceRange, len(ranges))
	copy(out, ranges)
	for i := range out {
		out[i].Count = 0
	}

	for i := range properties {
		p := &properties[i]
		if p.ListingType != listing || !p.IsAvailable() || p.Price == nil {
			continue
		}
		for j := range out {
			if *p.Price >= out[j].MinPrice && (out[j].MaxPrice == 0 || *p.Price < out[j].MaxPrice) {
				out[j].Count++
				break
			}
		}
	}
	return out
}

// PropertyStats summarises an agent's listings
type PropertyStats struct {
	Total         int                           `json:"total"`
	Featured      int                           `json:"featured"`
	ByStatus      map[models.PropertyStatus]int `json:"by_status"`
	ByListingType map[models.ListingType]int    `json:"by_listing_type"`
	ByType        map[string]int                `json:"by_type"`
}

// Properties aggregates listings
func Properties(properties []models.Property) PropertyStats {
	s := PropertyStats{
		Total:         len(properties),
		ByStatus:      make(map[models.PropertyStatus]int),
		ByListingType: make(map[models.ListingType]int),
		ByType:        make(map[string]int),
	}
	for _, p := range properties {
		s.ByStatus[p.Status]++
		s.ByListingType[p.ListingType]++
		if p.PropertyType != "" {
			s.ByType[p.PropertyType]++
		}
		if p.IsFeatured {
			s.Featured++
		}
	}
	return s
}

// BookingStats summarises rental bookings
type BookingStats struct {
	Total            int                          `json:"total"`
	ByStatus         map[models.BookingStatus]int `json:"by_status"`
	ByPaymentStatus  map[models.PaymentStatus]int `json:"by_payment_status"`
	PaidRevenue      int64                        `json:"paid_revenue"`
	PendingRevenue   int64                        `json:"pending_revenue"`
	BookedNights     int                          `json:"booked_nights"`
	UpcomingCheckIns int                          `json:"upcoming_check_ins"`
}

// Bookings aggregates bookings as of now. Cancelled bookings count toward
// status totals only. Upcoming check-ins start within the next 7 days.
func Bookings(bookings []models.RentalBooking, now time.Time) BookingStats {
	s := BookingStats{
		Total:           len(bookings),
		ByStatus:        make(map[models.BookingStatus]int),
		ByPaymentStatus: make(map[models.PaymentStatus]int),
	}
	horizon := now.AddDate(0, 0, 7)

	for _, b := range bookings {
		s.ByStatus[b.BookingStatus]++
		s.ByPaymentStatus[b.PaymentStatus]++
		if b.BookingStatus == models.BookingStatusCancelled {
			continue
		}

		switch b.PaymentStatus {
		case models.PaymentStatusPaid:
			s.PaidRevenue += b.TotalAmount
		case models.PaymentStatusPending:
			s.PendingRevenue += b.TotalAmount
		}
		s.BookedNights += b.TotalDays
		if !b.StartDate.Before(now) && b.StartDate.Before(horizon) {
			s.UpcomingCheckIns++
		}
	}
	return s
}

// Occupancy is booked nights over available nights in [from, to) across listings, in percent
func Occupancy(bookings []models.RentalBooking, listings int, from, to time.Time) float64 {
	if listings <= 0 || !to.After(from) {
		return 0
	}
	available := to.Sub(from).Hours() / 24 * float64(listings)

	var booked float64
	for _, b := range bookings {
		if b.BookingStatus == models.BookingStatusCancelled {
			continue
		}
		start, end := b.StartDate, b.EndDate
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if end.After(start) {
			booked += end.Sub(start).Hours() / 24
		}
	}
	return booked / available * 100
}

// SupportStats summarises inquiries and tickets
type SupportStats struct {
	InquiriesByStatus map[models.InquiryStatus]int `json:"inquiries_by_status"`
	TicketsByStatus   map[models.TicketStatus]int  `json:"tickets_by_status"`
	TicketsByPriority map[string]int               `json:"tickets_by_priority"`
	OpenTickets       int                          `json:"open_tickets"`
}

// Support aggregates inquiries and tickets
func Support(inquiries []models.Inquiry, tickets []models.CustomerComplaint) SupportStats {
	s := SupportStats{
		InquiriesByStatus: make(map[models.InquiryStatus]int),
		TicketsByStatus:   make(map[models.TicketStatus]int),
		TicketsByPriority: make(map[string]int),
	}
	for _, q := range inquiries {
		s.InquiriesByStatus[q.Status]++
	}
	for _, t := range tickets {
		s.TicketsByStatus[t.Status]++
		s.TicketsByPriority[t.Priority]++
		if t.Status == models.TicketStatusOpen || t.Status == models.TicketStatusInProgress {
			s.OpenTickets++
		}
	}
	return s
}
