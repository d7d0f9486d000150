package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/models"
	"marketplace-console/internal/store"
)

type fixture struct {
	logs    *store.Memory[models.ErrorLog]
	deletes *store.Memory[models.DeleteLog]
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -45)
	recent := now.AddDate(0, 0, -3)

	f := &fixture{
		logs:    store.NewMemory[models.ErrorLog](models.CollectionErrorLogs),
		deletes: store.NewMemory[models.DeleteLog](models.CollectionDeleteLogs),
	}
	require.NoError(t, f.logs.Seed(
		models.ErrorLog{ID: "e1", Level: "error", Message: "payment webhook timeout", IsResolved: true, ResolvedAt: &old},
		models.ErrorLog{ID: "e2", Level: "warning", Message: "slow query", IsResolved: true, ResolvedAt: &recent},
		models.ErrorLog{ID: "e3", Level: "critical", Message: "disk full", IsResolved: false, UpdatedAt: old},
		models.ErrorLog{ID: "e4", Level: "error", Message: "image upload failed", IsResolved: true, UpdatedAt: old},
	))
	f.svc = NewService(f.logs, store.NewDeleteLogs(f.deletes), nil, nil)
	f.svc.now = func() time.Time { return now }
	return f
}

func TestPurge_DeletesOnlyExpiredResolvedLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.PurgeResolvedErrorLogs(ctx, Options{RetentionDays: 30, MaxDeletionCount: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TargetCount)
	assert.ElementsMatch(t, []string{"e1", "e4"}, result.DeletedIDs)

	left, err := f.logs.Select(ctx, store.Query{})
	require.NoError(t, err)
	assert.Len(t, left, 2)

	logs, err := f.deletes.Select(ctx, store.Query{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, models.DeleteReasonRetention, l.Reason)
		assert.Equal(t, models.CollectionErrorLogs, l.Collection)
	}
}

func TestPurge_DryRunDeletesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.PurgeResolvedErrorLogs(ctx, Options{RetentionDays: 30, MaxDeletionCount: 100, DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 2, result.DeletedCount)

	n, _ := f.logs.Count(ctx, nil)
	assert.Equal(t, int64(4), n)
	n, _ = f.deletes.Count(ctx, nil)
	assert.Zero(t, n)
}

func TestPurge_SafetyLimit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PurgeResolvedErrorLogs(context.Background(), Options{RetentionDays: 30, MaxDeletionCount: 1})
	require.ErrorIs(t, err, ErrSafetyLimit)

	n, _ := f.logs.Count(context.Background(), nil)
	assert.Equal(t, int64(4), n)
}

func TestPurge_RejectsZeroRetention(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PurgeResolvedErrorLogs(context.Background(), Options{RetentionDays: 0})
	assert.ErrorIs(t, err, ErrInvalidRetention)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.PurgeResolvedErrorLogs(ctx, Options{RetentionDays: 30})
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["total_deleted"])
	assert.Equal(t, 1, stats["currently_resolved"])
	assert.Equal(t, 0, stats["expired_ready_for_deletion"])
}
