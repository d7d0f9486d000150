package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"marketplace-console/internal/forms"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

// ErrConfirmationRequired is returned by Delete when the caller has not confirmed
var ErrConfirmationRequired = errors.New("delete requires explicit confirmation")

// DeleteRecorder keeps an audit row for every physical delete
type DeleteRecorder interface {
	RecordDeletion(ctx context.Context, entry *models.DeleteLog) error
}

// Mutator is the collection-agnostic editor surface used by the operation queue
type Mutator interface {
	Collection() string
	Create(ctx context.Context, raw map[string]string) (string, error)
	Update(ctx context.Context, id string, raw map[string]string) error
	Delete(ctx context.Context, id string, confirmed bool, actor string) error
}

// Editor runs create/update/delete/list for one collection.
// Writes are not idempotent: a retried Create inserts again.
type Editor[T any] struct {
	table   store.Collection[T]
	schema  forms.Schema
	cache   *querycache.Cache
	hub     *realtime.Hub
	deletes DeleteRecorder

	// Invalidates lists extra collections whose cached reads derive from this one
	Invalidates []string
}

// NewEditor creates an editor. cache, hub and deletes may be nil.
func NewEditor[T any](table store.Collection[T], schema forms.Schema, cache *querycache.Cache, hub *realtime.Hub, deletes DeleteRecorder) *Editor[T] {
	return &Editor[T]{
		table:   table,
		schema:  schema,
		cache:   cache,
		hub:     hub,
		deletes: deletes,
	}
}

// Collection returns the collection name
func (e *Editor[T]) Collection() string {
	return e.table.Name()
}

// Schema returns the form schema
func (e *Editor[T]) Schema() forms.Schema {
	return e.schema
}

// List reads through the query cache
func (e *Editor[T]) List(ctx context.Context, q store.Query) ([]T, error) {
	if e.cache == nil {
		return e.table.Select(ctx, q)
	}
	return querycache.Fetch(e.cache, e.Collection(), q.Key(), func() ([]T, error) {
		return e.table.Select(ctx, q)
	})
}

// Get reads one record
func (e *Editor[T]) Get(ctx context.Context, id string) (*T, error) {
	return e.table.Get(ctx, id)
}

// Create validates raw form input and inserts it. No write happens when validation fails.
func (e *Editor[T]) Create(ctx context.Context, raw map[string]string) (string, error) {
	values, err := e.schema.Bind(raw, false)
	if err != nil {
		return "", err
	}
	return e.CreateValues(ctx, values)
}

// CreateValues inserts already-bound values
func (e *Editor[T]) CreateValues(ctx context.Context, values forms.Values) (string, error) {
	done := e.begin("create", "")
	defer done()

	id, err := e.table.Insert(ctx, values)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", e.schema.Name, err)
	}

	e.changed(realtime.EventInsert, id)
	return id, nil
}

// Update validates the fields present in raw and writes only those
func (e *Editor[T]) Update(ctx context.Context, id string, raw map[string]string) error {
	values, err := e.schema.Bind(raw, true)
	if err != nil {
		return err
	}
	return e.UpdateValues(ctx, id, values)
}

// UpdateValues writes already-bound values
func (e *Editor[T]) UpdateValues(ctx context.Context, id string, values forms.Values) error {
	done := e.begin("update", id)
	defer done()

	if err := e.table.Update(ctx, id, values); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update %s %s: %w", e.schema.Name, id, err)
	}

	e.changed(realtime.EventUpdate, id)
	return nil
}

// Delete removes a record once the user has confirmed. There is no undo.
func (e *Editor[T]) Delete(ctx context.Context, id string, confirmed bool, actor string) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	done := e.begin("delete", id)
	defer done()

	row, err := e.table.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete %s %s: %w", e.schema.Name, id, err)
	}

	if e.deletes != nil {
		entry := &models.DeleteLog{
			Collection: e.Collection(),
			RecordID:   id,
			Summary:    summarize(row),
			DeletedBy:  actor,
			Reason:     models.DeleteReasonManual,
		}
		if err := e.deletes.RecordDeletion(ctx, entry); err != nil {
			logging.Logger.Warnf("Editor: Failed to record deletion of %s/%s: %v", e.Collection(), id, err)
		}
	}

	e.changed(realtime.EventDelete, id)
	return nil
}

// MutationKey identifies an in-flight mutation for pending state
func (e *Editor[T]) MutationKey(op, id string) string {
	return e.Collection() + ":" + op + ":" + id
}

// Pending reports whether a mutation is in flight
func (e *Editor[T]) Pending(op, id string) bool {
	if e.cache == nil {
		return false
	}
	return e.cache.Pending(e.MutationKey(op, id))
}

func (e *Editor[T]) begin(op, id string) func() {
	if e.cache == nil {
		return func() {}
	}
	return e.cache.Begin(e.MutationKey(op, id))
}

func (e *Editor[T]) changed(typ realtime.EventType, id string) {
	if e.cache != nil {
		e.cache.Invalidate(append([]string{e.Collection()}, e.Invalidates...)...)
	}
	if e.hub != nil {
		e.hub.Notify(e.Collection(), typ, id)
	}
}

func summarize(row interface{}) string {
	b, err := json.Marshal(row)
	if err != nil {
		return ""
	}
	const limit = 2000
	if len(b) > limit {
		return string(b[:limit])
	}
	return string(b)
}
