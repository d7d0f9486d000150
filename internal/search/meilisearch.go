package search

import (
	"encoding/json"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"marketplace-console/internal/models"
)

// Index names
const (
	PropertiesIndex = "properties"
	LocationsIndex  = "locations"
)

// Index is the subset of a Meilisearch index the console uses
type Index interface {
	AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error)
	DeleteDocument(identifier string) (*meilisearch.TaskInfo, error)
	Search(query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error)
}

// SearchClient indexes and searches listings and locations
type SearchClient struct {
	client     *meilisearch.Client
	properties Index
	locations  Index
}

// NewSearchClient connects to a Meilisearch host
func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client:     client,
		properties: client.Index(PropertiesIndex),
		locations:  client.Index(LocationsIndex),
	}
}

// NewSearchClientWithIndexes builds a client over existing indexes
func NewSearchClientWithIndexes(properties, locations Index) *SearchClient {
	return &SearchClient{properties: properties, locations: locations}
}

// Healthy reports whether the Meilisearch server answers
func (s *SearchClient) Healthy() bool {
	if s.client == nil {
		return s.properties != nil
	}
	return s.client.IsHealthy()
}

// InitIndex creates both indexes and configures their attributes
func (s *SearchClient) InitIndex() error {
	if s.client == nil {
		return nil
	}

	settings := map[string]struct {
		searchable, filterable, sortable []string
	}{
		PropertiesIndex: {
			searchable: []string{"title", "description", "address", "city", "province"},
			filterable: []string{"id", "agent_id", "price", "listing_type", "property_type", "status", "city", "province", "bedrooms", "is_featured"},
			sortable:   []string{"price", "created_at", "land_area", "building_area"},
		},
		LocationsIndex: {
			searchable: []string{"province_name", "city_name", "district_name", "subdistrict_name", "postal_code", "area_name"},
			filterable: []string{"province_code", "city_type", "is_active", "province_name"},
			sortable:   []string{"province_name", "city_name"},
		},
	}

	for uid, cfg := range settings {
		// Ignore error if index already exists
		_, err := s.client.CreateIndex(&meilisearch.IndexConfig{Uid: uid, PrimaryKey: "id"})
		if err != nil && !strings.Contains(err.Error(), "index_already_exists") && err.Error() != "index already exists" {
			return err
		}

		index := s.client.Index(uid)
		if _, err := index.UpdateSearchableAttributes(&cfg.searchable); err != nil {
			return err
		}
		if _, err := index.UpdateFilterableAttributes(&cfg.filterable); err != nil {
			return err
		}
		if _, err := index.UpdateSortableAttributes(&cfg.sortable); err != nil {
			return err
		}
	}
	return nil
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(property *models.Property) error {
	_, err := s.properties.AddDocuments([]models.Property{*property})
	return err
}

// IndexProperties indexes multiple properties
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	_, err := s.properties.AddDocuments(properties)
	return err
}

// DeleteProperty removes a property document
func (s *SearchClient) DeleteProperty(id string) error {
	_, err := s.properties.DeleteDocument(id)
	return err
}

// IndexLocations indexes location records
func (s *SearchClient) IndexLocations(locations []models.Location) error {
	if len(locations) == 0 {
		return nil
	}
	_, err := s.locations.AddDocuments(locations)
	return err
}

// DeleteLocation removes a location document
func (s *SearchClient) DeleteLocation(id string) error {
	_, err := s.locations.DeleteDocument(id)
	return err
}

// SearchLocations finds locations by any of their names or postal code
func (s *SearchClient) SearchLocations(query string, limit int64) ([]models.Location, int64, error) {
	if limit == 0 {
		limit = 20
	}
	res, err := s.locations.Search(query, &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	return decodeHits[models.Location](res.Hits), res.EstimatedTotalHits, nil
}

// GetFacets retrieves the property facet distribution for the given fields
func (s *SearchClient) GetFacets(facets []string) (map[string]interface{}, error) {
	searchRes, err := s.properties.Search("", &meilisearch.SearchRequest{
		Limit:  0,
		Facets: facets,
	})
	if err != nil {
		return nil, err
	}

	if searchRes.FacetDistribution != nil {
		if facetMap, ok := searchRes.FacetDistribution.(map[string]interface{}); ok {
			return facetMap, nil
		}
	}
	return map[string]interface{}{}, nil
}

// decodeHits converts hits to T through JSON, skipping hits that do not fit
func decodeHits[T any](hits []interface{}) []T {
	out := make([]T, 0, len(hits))
	for _, hit := range hits {
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var v T
		if err := json.Unmarshal(hitJSON, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
