package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"marketplace-console/internal/models"
)

// FilterParams are the agent console's listing search controls
type FilterParams struct {
	Query         string   `form:"q"`
	AgentID       string   `form:"agent_id"`
	MinPrice      *int64   `form:"min_price"`
	MaxPrice      *int64   `form:"max_price"`
	ListingType   string   `form:"listing_type"`
	PropertyTypes []string `form:"property_type"`
	Status        string   `form:"status"`
	City          string   `form:"city"`
	Province      string   `form:"province"`
	MinBedrooms   *int     `form:"min_bedrooms"`
	SortBy        string   `form:"sort"`
	Limit         int64    `form:"limit"`
	Offset        int64    `form:"offset"`
}

// SearchResult is one page of matching listings
type SearchResult struct {
	Hits           []models.Property `json:"hits"`
	TotalHits      int64             `json:"total_hits"`
	ProcessingTime int64             `json:"processing_time_ms"`
}

var sortable = map[string]bool{
	"price:asc": true, "price:desc": true,
	"created_at:asc": true, "created_at:desc": true,
	"land_area:asc": true, "land_area:desc": true,
	"building_area:asc": true, "building_area:desc": true,
}

// BuildFilter renders params as a Meilisearch filter expression
func BuildFilter(params FilterParams) string {
	var filters []string

	if params.AgentID != "" {
		filters = append(filters, "agent_id = "+strconv.Quote(params.AgentID))
	}
	// Price range filter
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %d", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %d", *params.MaxPrice))
	}
	if params.ListingType != "" {
		filters = append(filters, "listing_type = "+strconv.Quote(params.ListingType))
	}

	// Property type filter
	if len(params.PropertyTypes) > 0 {
		typeFilters := make([]string, len(params.PropertyTypes))
		for i, typ := range params.PropertyTypes {
			typeFilters[i] = "property_type = " + strconv.Quote(typ)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(typeFilters, " OR ")))
	}

	if params.Status != "" {
		filters = append(filters, "status = "+strconv.Quote(params.Status))
	}
	if params.City != "" {
		filters = append(filters, "city = "+strconv.Quote(params.City))
	}
	if params.Province != "" {
		filters = append(filters, "province = "+strconv.Quote(params.Province))
	}
	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}

	return strings.Join(filters, " AND ")
}

// FilterSearch performs a listing search with filters
func (s *SearchClient) FilterSearch(params FilterParams) (*SearchResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if filter := BuildFilter(params); filter != "" {
		searchReq.Filter = filter
	}
	if sortable[params.SortBy] {
		searchReq.Sort = []string{params.SortBy}
	}

	searchRes, err := s.properties.Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Hits:           decodeHits[models.Property](searchRes.Hits),
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}
