package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/models"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

type fakeIndex struct {
	docs     map[string]map[string]interface{}
	lastReq  *meilisearch.SearchRequest
	lastTerm string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]map[string]interface{})}
}

func (f *fakeIndex) AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error) {
	b, err := json.Marshal(documentsPtr)
	if err != nil {
		return nil, err
	}
	var docs []map[string]interface{}
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		f.docs[d["id"].(string)] = d
	}
	return &meilisearch.TaskInfo{}, nil
}

func (f *fakeIndex) DeleteDocument(identifier string) (*meilisearch.TaskInfo, error) {
	delete(f.docs, identifier)
	return &meilisearch.TaskInfo{}, nil
}

func (f *fakeIndex) Search(query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error) {
	f.lastTerm = query
	f.lastReq = request
	hits := make([]interface{}, 0, len(f.docs))
	for _, d := range f.docs {
		hits = append(hits, d)
	}
	return &meilisearch.SearchResponse{Hits: hits, EstimatedTotalHits: int64(len(hits))}, nil
}

func TestBuildFilter(t *testing.T) {
	min, max := int64(500000000), int64(2000000000)
	beds := 3

	filter := BuildFilter(FilterParams{
		MinPrice:      &min,
		MaxPrice:      &max,
		ListingType:   "sale",
		PropertyTypes: []string{"house", "villa"},
		City:          `Denpasar "Selatan"`,
		MinBedrooms:   &beds,
	})

	assert.Equal(t,
		`price >= 500000000 AND price <= 2000000000 AND listing_type = "sale" AND (property_type = "house" OR property_type = "villa") AND city = "Denpasar \"Selatan\"" AND bedrooms >= 3`,
		filter)
	assert.Empty(t, BuildFilter(FilterParams{}))
}

func TestFilterSearch_DefaultsAndSort(t *testing.T) {
	props := newFakeIndex()
	c := NewSearchClientWithIndexes(props, newFakeIndex())
	require.NoError(t, c.IndexProperty(&models.Property{ID: "p1", Title: "Rumah Cipete", ListingType: models.ListingTypeSale}))

	res, err := c.FilterSearch(FilterParams{Query: "cipete", SortBy: "price:desc", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(20), props.lastReq.Limit)
	assert.Equal(t, []string{"price:desc"}, props.lastReq.Sort)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Rumah Cipete", res.Hits[0].Title)

	_, err = c.FilterSearch(FilterParams{SortBy: "rent:asc"})
	require.NoError(t, err)
	assert.Nil(t, props.lastReq.Sort)
}

func TestIndexer_FollowsChanges(t *testing.T) {
	ctx := context.Background()
	props, locs := newFakeIndex(), newFakeIndex()
	c := NewSearchClientWithIndexes(props, locs)

	propTable := store.NewMemory[models.Property](models.CollectionProperties)
	locTable := store.NewMemory[models.Location](models.CollectionLocations)
	require.NoError(t, propTable.Seed(models.Property{ID: "p1", Title: "Villa Canggu", ListingType: models.ListingTypeRent}))
	require.NoError(t, locTable.Seed(
		models.Location{ID: "l1", ProvinceName: "Bali", ProvinceCode: "51", CityName: "Badung"},
		models.Location{ID: "l2", ProvinceName: "Bali", ProvinceCode: "51", CityName: "Denpasar"},
	))

	ix := NewIndexer(c, propTable, locTable)

	ix.Handle(ctx, realtime.Event{Collection: models.CollectionProperties, Type: realtime.EventInsert, RecordID: "p1"})
	assert.Contains(t, props.docs, "p1")

	ix.Handle(ctx, realtime.Event{Collection: models.CollectionProperties, Type: realtime.EventDelete, RecordID: "p1"})
	assert.NotContains(t, props.docs, "p1")

	// a bulk rename carries no record id
	ix.Handle(ctx, realtime.Event{Collection: models.CollectionLocations, Type: realtime.EventUpdate})
	assert.Len(t, locs.docs, 2)

	// a record gone by the time the event is handled is dropped from the index
	ix.Handle(ctx, realtime.Event{Collection: models.CollectionLocations, Type: realtime.EventUpdate, RecordID: "l9"})
	locs.docs["l9"] = map[string]interface{}{"id": "l9"}
	ix.Handle(ctx, realtime.Event{Collection: models.CollectionLocations, Type: realtime.EventUpdate, RecordID: "l9"})
	assert.NotContains(t, locs.docs, "l9")
}

func TestSearchLocations(t *testing.T) {
	locs := newFakeIndex()
	c := NewSearchClientWithIndexes(newFakeIndex(), locs)
	require.NoError(t, c.IndexLocations([]models.Location{{ID: "l1", ProvinceName: "Jawa Barat", ProvinceCode: "32", CityName: "Bandung"}}))

	found, total, err := c.SearchLocations("bandung", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Bandung", found[0].CityName)
	assert.Equal(t, int64(20), locs.lastReq.Limit)
}
