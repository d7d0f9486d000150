package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"marketplace-console/internal/cleanup"
	"marketplace-console/internal/config"
	"marketplace-console/internal/opqueue"
	"marketplace-console/internal/procedures"
	"marketplace-console/internal/scheduler/mocks"
)

func TestParseDailyRunTime(t *testing.T) {
	s := NewScheduler(nil, nil, config.DefaultConfig())

	assert.Equal(t, "30 3 * * *", s.parseDailyRunTime("03:30"))
	assert.Equal(t, "0 23 * * *", s.parseDailyRunTime("23:00"))
	assert.Equal(t, "0 2 * * *", s.parseDailyRunTime("noon"))
	assert.Equal(t, "0 2 * * *", s.parseDailyRunTime("25:00"))
}

func TestStart_RegistersEnabledJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := config.DefaultConfig()
	cfg.Sync.DailyRunEnabled = true
	cfg.Cleanup.DailyRunEnabled = false

	s := NewScheduler(mocks.NewMockLocationSyncer(ctrl), mocks.NewMockLogCleaner(ctrl), cfg)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 1, s.Entries())
}

func TestStart_NothingEnabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewScheduler(mocks.NewMockLocationSyncer(ctrl), mocks.NewMockLogCleaner(ctrl), config.DefaultConfig())

	require.NoError(t, s.Start())
	assert.Zero(t, s.Entries())
	s.Stop()
}

func TestRunSync(t *testing.T) {
	t.Run("uses default mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		syncer := mocks.NewMockLocationSyncer(ctrl)
		cfg := config.DefaultConfig()
		cfg.Sync.DefaultMode = procedures.ModeDistricts

		syncer.EXPECT().Run(gomock.Any(), procedures.ModeDistricts).
			Return(&procedures.SyncResult{Success: true, Stats: procedures.SyncStats{Districts: 7277}}, nil)

		s := NewScheduler(syncer, nil, cfg)
		assert.NoError(t, s.RunSync())
	})

	t.Run("reports failure without retrying", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		syncer := mocks.NewMockLocationSyncer(ctrl)

		syncer.EXPECT().Run(gomock.Any(), procedures.ModeFull).Return(nil, procedures.ErrCircuitOpen).Times(1)

		s := NewScheduler(syncer, nil, config.DefaultConfig())
		assert.ErrorIs(t, s.RunSync(), procedures.ErrCircuitOpen)
	})
}

func TestRunCleanup_PassesConfiguredLimits(t *testing.T) {
	ctrl := gomock.NewController(t)
	cleaner := mocks.NewMockLogCleaner(ctrl)
	cfg := config.DefaultConfig()
	cfg.Cleanup.RetentionDays = 14
	cfg.Cleanup.MaxDeletionCount = 500

	cleaner.EXPECT().
		PurgeResolvedErrorLogs(gomock.Any(), cleanup.Options{RetentionDays: 14, MaxDeletionCount: 500}).
		Return(&cleanup.Result{DeletedCount: 3}, nil)

	s := NewScheduler(nil, cleaner, cfg)
	assert.NoError(t, s.RunCleanup())
}

func TestQueueWorker_FlushNowRecordsLastResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	flusher := mocks.NewMockFlusher(ctrl)
	flusher.EXPECT().Flush(gomock.Any(), 5).Return(&opqueue.FlushResult{Processed: 2, Done: 2}, nil)

	w := NewQueueWorker(flusher, time.Minute, 5)
	result, err := w.FlushNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Done)

	status := w.Status()
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, result, status["last_flush"])
}

func TestQueueWorker_FlushError(t *testing.T) {
	ctrl := gomock.NewController(t)
	flusher := mocks.NewMockFlusher(ctrl)
	flusher.EXPECT().Flush(gomock.Any(), 20).Return(nil, errors.New("db down"))

	w := NewQueueWorker(flusher, 0, 0)
	_, err := w.FlushNow(context.Background())
	assert.Error(t, err)
	assert.NotContains(t, w.Status(), "last_flush")
}

func TestQueueWorker_TicksUntilStopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	flusher := mocks.NewMockFlusher(ctrl)
	flushed := make(chan struct{}, 10)
	flusher.EXPECT().Flush(gomock.Any(), 20).DoAndReturn(func(ctx context.Context, limit int) (*opqueue.FlushResult, error) {
		flushed <- struct{}{}
		return &opqueue.FlushResult{}, nil
	}).MinTimes(1)

	w := NewQueueWorker(flusher, 10*time.Millisecond, 20)
	w.Start()
	select {
	case <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never flushed")
	}
	w.Stop()
	assert.Equal(t, false, w.Status()["is_running"])
}
