package scheduler

//go:generate mockgen -source=scheduler.go -destination=mocks/scheduler_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"marketplace-console/internal/cleanup"
	"marketplace-console/internal/config"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/opqueue"
	"marketplace-console/internal/procedures"
)

// LocationSyncer runs the location sync procedure
type LocationSyncer interface {
	Run(ctx context.Context, mode string) (*procedures.SyncResult, error)
}

// LogCleaner purges expired error logs
type LogCleaner interface {
	PurgeResolvedErrorLogs(ctx context.Context, opts cleanup.Options) (*cleanup.Result, error)
}

// Flusher replays queued operations
type Flusher interface {
	Flush(ctx context.Context, limit int) (*opqueue.FlushResult, error)
}

// jobTimeout bounds one scheduled run
const jobTimeout = 30 * time.Minute

// Scheduler handles the daily location sync and error log cleanup
type Scheduler struct {
	cron      *cron.Cron
	syncer    LocationSyncer
	cleaner   LogCleaner
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler in the configured timezone
func NewScheduler(syncer LocationSyncer, cleaner LogCleaner, cfg *config.Config) *Scheduler {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logging.Logger.Warnf("Scheduler: Unknown timezone '%s', using UTC", cfg.Timezone)
		loc = time.UTC
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		syncer:  syncer,
		cleaner: cleaner,
		config:  cfg,
	}
}

// Start registers the enabled daily jobs and starts the cron runner
func (s *Scheduler) Start() error {
	jobs := 0

	if s.config.Sync.DailyRunEnabled && s.syncer != nil {
		spec := s.parseDailyRunTime(s.config.Sync.DailyRunTime)
		if _, err := s.cron.AddFunc(spec, func() { _ = s.RunSync() }); err != nil {
			return fmt.Errorf("failed to schedule location sync: %w", err)
		}
		logging.Logger.Infof("Scheduler: Location sync daily at %s (cron: %s)", s.config.Sync.DailyRunTime, spec)
		jobs++
	}

	if s.config.Cleanup.DailyRunEnabled && s.cleaner != nil {
		spec := s.parseDailyRunTime(s.config.Cleanup.DailyRunTime)
		if _, err := s.cron.AddFunc(spec, func() { _ = s.RunCleanup() }); err != nil {
			return fmt.Errorf("failed to schedule cleanup: %w", err)
		}
		logging.Logger.Infof("Scheduler: Error log cleanup daily at %s (cron: %s)", s.config.Cleanup.DailyRunTime, spec)
		jobs++
	}

	if jobs == 0 {
		logging.Logger.Info("Scheduler: Daily runs are disabled in configuration")
		return nil
	}

	s.cron.Start()
	s.isRunning = true
	logging.Logger.Infof("Scheduler: Started with %d jobs", jobs)
	return nil
}

// Stop stops the scheduler and waits for a running job
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		logging.Logger.Info("Scheduler: Stopped")
	}
}

// Entries returns the number of scheduled jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunSync runs the location sync in the configured default mode
func (s *Scheduler) RunSync() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	mode := s.config.Sync.DefaultMode
	if mode == "" {
		mode = procedures.ModeFull
	}
	logging.Logger.Infof("Scheduler: Starting daily location sync (%s)", mode)
	result, err := s.syncer.Run(ctx, mode)
	if err != nil {
		logging.Logger.Errorf("Scheduler: Daily location sync failed: %v", err)
		return err
	}
	logging.Logger.Infof("Scheduler: Daily location sync completed: %s", result.Stats)
	return nil
}

// RunCleanup runs the error log retention cleanup with configured limits
func (s *Scheduler) RunCleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	opts := cleanup.Options{
		RetentionDays:    s.config.Cleanup.RetentionDays,
		MaxDeletionCount: s.config.Cleanup.MaxDeletionCount,
	}
	logging.Logger.Info("Scheduler: Starting daily error log cleanup")
	result, err := s.cleaner.PurgeResolvedErrorLogs(ctx, opts)
	if err != nil {
		logging.Logger.Errorf("Scheduler: Daily cleanup failed: %v", err)
		return err
	}
	logging.Logger.Infof("Scheduler: Daily cleanup completed, %d deleted, %d errors", result.DeletedCount, result.ErrorCount)
	return nil
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 2:00 AM if parsing fails
	logging.Logger.Warnf("Scheduler: Failed to parse time '%s', using default 02:00", timeStr)
	return "0 2 * * *"
}
