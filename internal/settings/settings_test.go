package settings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/forms"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/store"
)

func newService() (*Service, *store.Memory[models.SEOSettings], *store.Memory[models.CSUserSettings]) {
	seoTable := store.NewMemory[models.SEOSettings](models.CollectionSEOSettings)
	cs := store.NewMemory[models.CSUserSettings](models.CollectionCSUserSettings)
	return NewService(seoTable, cs, querycache.New(time.Minute, time.Minute), nil), seoTable, cs
}

func TestSEO_DefaultsBeforeFirstSave(t *testing.T) {
	svc, _, _ := newService()

	s, err := svc.SEO(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SEOSettingsID, s.ID)

	report, err := svc.Score(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Score)
}

func TestUpdateSEO_UpsertsAndRescores(t *testing.T) {
	svc, table, _ := newService()
	ctx := context.Background()

	_, err := svc.Score(ctx) // warm the cache
	require.NoError(t, err)

	_, err = svc.UpdateSEO(ctx, map[string]string{"keywords": "rumah dijual, sewa apartemen"})
	require.NoError(t, err)
	n, _ := table.Count(ctx, nil)
	assert.Equal(t, int64(1), n)

	before, err := svc.Score(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, before.Score)

	saved, err := svc.UpdateSEO(ctx, map[string]string{"og_image_url": "https://cdn.example.id/og.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "rumah dijual, sewa apartemen", saved.Keywords, "partial update keeps other fields")

	after, err := svc.Score(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Score+10, after.Score)
	n, _ = table.Count(ctx, nil)
	assert.Equal(t, int64(1), n)
}

func TestUpdateSEO_Validation(t *testing.T) {
	svc, table, _ := newService()

	_, err := svc.UpdateSEO(context.Background(), map[string]string{"site_title": strings.Repeat("x", 300)})
	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr))
	n, _ := table.Count(context.Background(), nil)
	assert.Zero(t, n)
}

func TestCS_UpsertPerUser(t *testing.T) {
	svc, _, table := newService()
	ctx := context.Background()

	d, err := svc.CS(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, 3, d.MaxConcurrentChats)
	assert.Empty(t, d.ID)

	saved, err := svc.UpdateCS(ctx, "agent-1", map[string]string{"max_concurrent_chats": "5", "language": "en"})
	require.NoError(t, err)
	assert.Equal(t, 5, saved.MaxConcurrentChats)
	assert.True(t, saved.AutoAssign)

	again, err := svc.UpdateCS(ctx, "agent-1", map[string]string{"away_message": "Back at 13:00"})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, "en", again.Language)

	n, _ := table.Count(ctx, nil)
	assert.Equal(t, int64(1), n)

	_, err = svc.UpdateCS(ctx, "agent-1", map[string]string{"max_concurrent_chats": "50"})
	var verr *forms.ValidationError
	assert.True(t, errors.As(err, &verr))
}
