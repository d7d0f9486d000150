package analytics

import (
	"context"
	"fmt"
	"time"

	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/store"
)

// CacheCollection is the cache namespace of dashboards; editors of the source
// collections list it in their Invalidates
const CacheCollection = "analytics"

// Dashboard is the agent analytics view
type Dashboard struct {
	AgentID      string        `json:"agent_id"`
	Properties   PropertyStats `json:"properties"`
	Bookings     BookingStats  `json:"bookings"`
	Occupancy30d float64       `json:"occupancy_30d"`
	SalePrices   []PriceRange  `json:"sale_price_distribution"`
	RentPrices   []PriceRange  `json:"rent_price_distribution"`
	Support      SupportStats  `json:"support"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// Service builds dashboards from the record collections
type Service struct {
	properties store.Collection[models.Property]
	bookings   store.Collection[models.RentalBooking]
	inquiries  store.Collection[models.Inquiry]
	tickets    store.Collection[models.CustomerComplaint]
	cache      *querycache.Cache
	now        func() time.Time
}

// NewService creates an analytics service. cache may be nil.
func NewService(
	properties store.Collection[models.Property],
	bookings store.Collection[models.RentalBooking],
	inquiries store.Collection[models.Inquiry],
	tickets store.Collection[models.CustomerComplaint],
	cache *querycache.Cache,
) *Service {
	return &Service{
		properties: properties,
		bookings:   bookings,
		inquiries:  inquiries,
		tickets:    tickets,
		cache:      cache,
		now:        time.Now,
	}
}

// Dashboard returns the dashboard of one agent, or of every listing when agentID is empty
func (s *Service) Dashboard(ctx context.Context, agentID string) (*Dashboard, error) {
	if s.cache == nil {
		return s.build(ctx, agentID)
	}
	return querycache.Fetch(s.cache, CacheCollection, "agent="+agentID, func() (*Dashboard, error) {
		return s.build(ctx, agentID)
	})
}

func (s *Service) build(ctx context.Context, agentID string) (*Dashboard, error) {
	byAgent := store.Query{}
	if agentID != "" {
		byAgent.Filters = map[string]interface{}{"agent_id": agentID}
	}

	properties, err := s.properties.Select(ctx, byAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	allBookings, err := s.bookings.Select(ctx, store.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	inquiries, err := s.inquiries.Select(ctx, byAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to load inquiries: %w", err)
	}
	tickets, err := s.tickets.Select(ctx, store.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	owned := make(map[string]bool, len(properties))
	rentals := 0
	for _, p := range properties {
		owned[p.ID] = true
		if p.ListingType == models.ListingTypeRent {
			rentals++
		}
	}
	bookings := make([]models.RentalBooking, 0, len(allBookings))
	for _, b := range allBookings {
		if owned[b.PropertyID] {
			bookings = append(bookings, b)
		}
	}

	now := s.now()
	return &Dashboard{
		AgentID:      agentID,
		Properties:   Properties(properties),
		Bookings:     Bookings(bookings, now),
		Occupancy30d: Occupancy(bookings, rentals, now.AddDate(0, 0, -30), now),
		SalePrices:   PriceDistribution(properties, models.ListingTypeSale, SalePriceRanges),
		RentPrices:   PriceDistribution(properties, models.ListingTypeRent, RentPriceRanges),
		Support:      Support(inquiries, tickets),
		GeneratedAt:  now,
	}, nil
}
