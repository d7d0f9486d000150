package crud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/forms"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

type fixture struct {
	table   *store.Memory[models.Location]
	logs    *store.Memory[models.DeleteLog]
	cache   *querycache.Cache
	hub     *realtime.Hub
	events  []realtime.Event
	editor  *Editor[models.Location]
	deletes *store.DeleteLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		table: store.NewMemory[models.Location](models.CollectionLocations),
		logs:  store.NewMemory[models.DeleteLog](models.CollectionDeleteLogs),
		cache: querycache.New(time.Minute, time.Minute),
		hub:   realtime.NewHub(),
	}
	f.deletes = store.NewDeleteLogs(f.logs)
	f.editor = NewEditor[models.Location](f.table, forms.LocationForm, f.cache, f.hub, f.deletes)
	sub := f.hub.Subscribe(models.CollectionLocations, func(e realtime.Event) {
		f.events = append(f.events, e)
	})
	t.Cleanup(sub.Cancel)
	return f
}

func bandung() map[string]string {
	return map[string]string{
		"province_name": "Jawa Barat",
		"province_code": "32",
		"city_name":     "Bandung",
		"city_type":     "KOTA",
		"population":    "",
	}
}

func TestEditor_CreateRejectsInvalidFormWithoutWriting(t *testing.T) {
	f := newFixture(t)
	raw := bandung()
	raw["population"] = "many"

	_, err := f.editor.Create(context.Background(), raw)

	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr))
	n, _ := f.table.Count(context.Background(), nil)
	assert.Zero(t, n)
	assert.Empty(t, f.events)
}

func TestEditor_CreatePersistsNullPopulation(t *testing.T) {
	f := newFixture(t)

	id, err := f.editor.Create(context.Background(), bandung())
	require.NoError(t, err)

	loc, err := f.editor.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, loc.Population)
	assert.Equal(t, "Bandung", loc.CityName)
}

func TestEditor_CreatePersistsIntegerPopulation(t *testing.T) {
	f := newFixture(t)
	raw := bandung()
	raw["population"] = "100000"

	id, err := f.editor.Create(context.Background(), raw)
	require.NoError(t, err)

	loc, err := f.editor.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, loc.Population)
	assert.Equal(t, 100000, *loc.Population)
}

func TestEditor_CreateDefaultsActiveWhenOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.editor.Create(ctx, map[string]string{
		"province_name": "Jawa Barat",
		"province_code": "32",
		"city_name":     "Bandung",
	})
	require.NoError(t, err)
	loc, err := f.editor.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, loc.IsActive)

	raw := bandung()
	raw["is_active"] = "false"
	id, err = f.editor.Create(ctx, raw)
	require.NoError(t, err)
	loc, err = f.editor.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, loc.IsActive)
}

func TestEditor_CreateInvalidatesListAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.editor.List(ctx, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, before)

	id, err := f.editor.Create(ctx, bandung())
	require.NoError(t, err)

	after, err := f.editor.List(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, after, 1)

	require.Len(t, f.events, 1)
	assert.Equal(t, realtime.EventInsert, f.events[0].Type)
	assert.Equal(t, id, f.events[0].RecordID)
}

func TestEditor_InvalidatesDependentCollections(t *testing.T) {
	f := newFixture(t)
	f.editor.Invalidates = []string{"province_analysis"}
	f.cache.Set("province_analysis", "all", "stale")

	_, err := f.editor.Create(context.Background(), bandung())
	require.NoError(t, err)

	_, ok := f.cache.Get("province_analysis", "all")
	assert.False(t, ok)
}

func TestEditor_UpdateWritesOnlyPresentFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.editor.Create(ctx, bandung())
	require.NoError(t, err)

	require.NoError(t, f.editor.Update(ctx, id, map[string]string{"population": "2500000"}))

	loc, err := f.editor.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jawa Barat", loc.ProvinceName)
	require.NotNil(t, loc.Population)
	assert.Equal(t, 2500000, *loc.Population)
	assert.Equal(t, realtime.EventUpdate, f.events[len(f.events)-1].Type)
}

func TestEditor_UpdateMissingRecord(t *testing.T) {
	f := newFixture(t)

	err := f.editor.Update(context.Background(), "nope", map[string]string{"population": "1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEditor_DeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.editor.Create(ctx, bandung())
	require.NoError(t, err)

	err = f.editor.Delete(ctx, id, false, "admin-1")
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	_, err = f.editor.Get(ctx, id)
	assert.NoError(t, err)
}

func TestEditor_DeleteRecordsDeleteLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.editor.Create(ctx, bandung())
	require.NoError(t, err)

	require.NoError(t, f.editor.Delete(ctx, id, true, "admin-1"))

	_, err = f.editor.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	logs, err := f.deletes.Recent(ctx, models.CollectionLocations, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].RecordID)
	assert.Equal(t, "admin-1", logs[0].DeletedBy)
	assert.Equal(t, models.DeleteReasonManual, logs[0].Reason)
	assert.Contains(t, logs[0].Summary, "Bandung")
	assert.Equal(t, realtime.EventDelete, f.events[len(f.events)-1].Type)
}

func TestEditor_DeleteSucceedsWhenDeleteLogFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.editor.Create(ctx, bandung())
	require.NoError(t, err)
	f.logs.FailOn = func(string, map[string]interface{}) error { return errors.New("log store down") }

	assert.NoError(t, f.editor.Delete(ctx, id, true, "admin-1"))
}

func TestEditor_PendingIsClearedAfterMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var pendingDuringInsert bool
	f.table.FailOn = func(op string, _ map[string]interface{}) error {
		if op == "insert" {
			pendingDuringInsert = f.editor.Pending("create", "")
		}
		return nil
	}

	_, err := f.editor.Create(ctx, bandung())
	require.NoError(t, err)
	assert.True(t, pendingDuringInsert)
	assert.False(t, f.editor.Pending("create", ""))
}
