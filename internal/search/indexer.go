package search

import (
	"context"
	"errors"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

// reindexBatch bounds one full reindex read
const reindexBatch = 5000

// Indexer keeps the search indexes in step with property and location changes
type Indexer struct {
	client     *SearchClient
	properties store.Collection[models.Property]
	locations  store.Collection[models.Location]
}

// NewIndexer creates an indexer
func NewIndexer(client *SearchClient, properties store.Collection[models.Property], locations store.Collection[models.Location]) *Indexer {
	return &Indexer{client: client, properties: properties, locations: locations}
}

// Run consumes change events until ctx is done
func (ix *Indexer) Run(ctx context.Context, hub *realtime.Hub) {
	props := hub.Watch(ctx, models.CollectionProperties, 256)
	locs := hub.Watch(ctx, models.CollectionLocations, 256)
	logging.Logger.Info("SearchIndexer: Watching properties and locations")

	for props != nil || locs != nil {
		select {
		case e, ok := <-props:
			if !ok {
				props = nil
				continue
			}
			ix.Handle(ctx, e)
		case e, ok := <-locs:
			if !ok {
				locs = nil
				continue
			}
			ix.Handle(ctx, e)
		}
	}
	logging.Logger.Info("SearchIndexer: Stopped")
}

// Handle applies one change event to the matching index
func (ix *Indexer) Handle(ctx context.Context, e realtime.Event) {
	var err error
	switch e.Collection {
	case models.CollectionProperties:
		err = ix.handleProperty(ctx, e)
	case models.CollectionLocations:
		err = ix.handleLocation(ctx, e)
	default:
		return
	}
	if err != nil {
		logging.Logger.Warnf("SearchIndexer: Failed to apply %s on %s/%s: %v", e.Type, e.Collection, e.RecordID, err)
	}
}

func (ix *Indexer) handleProperty(ctx context.Context, e realtime.Event) error {
	if e.RecordID == "" || e.Type == realtime.EventResync {
		_, err := ix.ReindexProperties(ctx)
		return err
	}
	if e.Type == realtime.EventDelete {
		return ix.client.DeleteProperty(e.RecordID)
	}
	p, err := ix.properties.Get(ctx, e.RecordID)
	if errors.Is(err, store.ErrNotFound) {
		return ix.client.DeleteProperty(e.RecordID)
	}
	if err != nil {
		return err
	}
	return ix.client.IndexProperty(p)
}

func (ix *Indexer) handleLocation(ctx context.Context, e realtime.Event) error {
	if e.RecordID == "" || e.Type == realtime.EventResync {
		_, err := ix.ReindexLocations(ctx)
		return err
	}
	if e.Type == realtime.EventDelete {
		return ix.client.DeleteLocation(e.RecordID)
	}
	l, err := ix.locations.Get(ctx, e.RecordID)
	if errors.Is(err, store.ErrNotFound) {
		return ix.client.DeleteLocation(e.RecordID)
	}
	if err != nil {
		return err
	}
	return ix.client.IndexLocations([]models.Location{*l})
}

// ReindexProperties pushes every property to the index
func (ix *Indexer) ReindexProperties(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += reindexBatch {
		rows, err := ix.properties.Select(ctx, store.Query{Order: "created_at asc", Limit: reindexBatch, Offset: offset})
		if err != nil {
			return total, err
		}
		if err := ix.client.IndexProperties(rows); err != nil {
			return total, err
		}
		total += len(rows)
		if len(rows) < reindexBatch {
			break
		}
	}
	logging.Logger.Infof("SearchIndexer: Reindexed %d properties", total)
	return total, nil
}

// ReindexLocations pushes every location to the index
func (ix *Indexer) ReindexLocations(ctx context.Context) (int, error) {
	total := 0
	for offset := 0; ; offset += reindexBatch {
		rows, err := ix.locations.Select(ctx, store.Query{Order: "created_at asc", Limit: reindexBatch, Offset: offset})
		if err != nil {
			return total, err
		}
		if err := ix.client.IndexLocations(rows); err != nil {
			return total, err
		}
		total += len(rows)
		if len(rows) < reindexBatch {
			break
		}
	}
	logging.Logger.Infof("SearchIndexer: Reindexed %d locations", total)
	return total, nil
}
