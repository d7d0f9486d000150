package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

// Service physically deletes resolved error logs past their retention period
type Service struct {
	logs    store.Collection[models.ErrorLog]
	deletes *store.DeleteLogs
	cache   *querycache.Cache
	hub     *realtime.Hub
	now     func() time.Time
}

var (
	// ErrInvalidRetention is returned for a retention below one day
	ErrInvalidRetention = errors.New("retention_days must be at least 1")
	// ErrSafetyLimit is returned when more rows qualify than a run may delete
	ErrSafetyLimit = errors.New("safety check failed")
)

// NewService creates a new cleanup service. cache and hub may be nil.
func NewService(logs store.Collection[models.ErrorLog], deletes *store.DeleteLogs, cache *querycache.Cache, hub *realtime.Hub) *Service {
	return &Service{
		logs:    logs,
		deletes: deletes,
		cache:   cache,
		hub:     hub,
		now:     time.Now,
	}
}

// Options holds configuration for cleanup operations
type Options struct {
	RetentionDays    int  `json:"retention_days"`     // Days to keep resolved logs before physical deletion
	MaxDeletionCount int  `json:"max_deletion_count"` // Safety limit for one run
	DryRun           bool `json:"dry_run"`            // Only report what would be deleted
}

// DefaultOptions returns default configuration
func DefaultOptions() Options {
	return Options{
		RetentionDays:    30,
		MaxDeletionCount: 10000,
		DryRun:           false,
	}
}

// Result holds the result of a cleanup operation
type Result struct {
	TargetCount  int       `json:"target_count"`
	DeletedCount int       `json:"deleted_count"`
	ErrorCount   int       `json:"error_count"`
	DryRun       bool      `json:"dry_run"`
	ExecutedAt   time.Time `json:"executed_at"`
	DeletedIDs   []string  `json:"deleted_ids"`
	Errors       []string  `json:"errors,omitempty"`
}

// FindExpired returns resolved error logs resolved before the retention cutoff.
// Logs without a resolution time age from their last update.
func (s *Service) FindExpired(ctx context.Context, retentionDays int) ([]models.ErrorLog, error) {
	resolved, err := s.logs.Select(ctx, store.Query{
		Filters: map[string]interface{}{"is_resolved": true},
		Order:   "created_at asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find resolved error logs: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	var expired []models.ErrorLog
	for _, l := range resolved {
		at := l.UpdatedAt
		if l.ResolvedAt != nil {
			at = *l.ResolvedAt
		}
		if at.Before(cutoff) {
			expired = append(expired, l)
		}
	}

	logging.Logger.Debugf("Cleanup: Found %d resolved error logs older than %s", len(expired), cutoff.Format("2006-01-02"))
	return expired, nil
}

// PurgeResolvedErrorLogs deletes expired logs, recording each deletion.
// It refuses to run when more rows qualify than MaxDeletionCount.
func (s *Service) PurgeResolvedErrorLogs(ctx context.Context, opts Options) (*Result, error) {
	if opts.RetentionDays < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidRetention, opts.RetentionDays)
	}

	result := &Result{
		DryRun:     opts.DryRun,
		ExecutedAt: s.now(),
		DeletedIDs: []string{},
	}

	expired, err := s.FindExpired(ctx, opts.RetentionDays)
	if err != nil {
		return nil, err
	}
	result.TargetCount = len(expired)
	if result.TargetCount == 0 {
		logging.Logger.Info("Cleanup: No expired error logs found")
		return result, nil
	}

	if opts.MaxDeletionCount > 0 && result.TargetCount > opts.MaxDeletionCount {
		return nil, fmt.Errorf("%w: %d error logs exceed max deletion limit of %d",
			ErrSafetyLimit, result.TargetCount, opts.MaxDeletionCount)
	}

	logging.Logger.Infof("Cleanup: Starting, %d error logs to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, opts.RetentionDays, opts.DryRun)

	for _, l := range expired {
		if opts.DryRun {
			logging.Logger.Infof("Cleanup: [DRY-RUN] Would delete error log %s (%s)", l.ID, truncate(l.Message, 80))
			result.DeletedIDs = append(result.DeletedIDs, l.ID)
			result.DeletedCount++
			continue
		}

		if _, err := s.logs.Delete(ctx, l.ID); err != nil {
			msg := fmt.Sprintf("failed to delete error log %s: %v", l.ID, err)
			logging.Logger.Error("Cleanup: " + msg)
			result.Errors = append(result.Errors, msg)
			result.ErrorCount++
			continue
		}

		if s.deletes != nil {
			if err := s.deletes.RecordDeletion(ctx, &models.DeleteLog{
				Collection: models.CollectionErrorLogs,
				RecordID:   l.ID,
				Summary:    fmt.Sprintf("[%s] %s", l.Level, truncate(l.Message, 500)),
				DeletedBy:  "cleanup",
				Reason:     models.DeleteReasonRetention,
			}); err != nil {
				logging.Logger.Warnf("Cleanup: Failed to record deletion of %s: %v", l.ID, err)
			}
		}

		result.DeletedIDs = append(result.DeletedIDs, l.ID)
		result.DeletedCount++
	}

	if !opts.DryRun && result.DeletedCount > 0 {
		if s.cache != nil {
			s.cache.Invalidate(models.CollectionErrorLogs, models.CollectionDeleteLogs)
		}
		if s.hub != nil {
			s.hub.Notify(models.CollectionErrorLogs, realtime.EventDelete, "")
		}
	}

	logging.Logger.Infof("Cleanup: Completed, %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, opts.DryRun)
	return result, nil
}

// Stats summarizes deletions and the current backlog
func (s *Service) Stats(ctx context.Context, retentionDays int) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	if s.deletes != nil {
		byReason, recent, err := s.deletes.ByReason(ctx, s.now().AddDate(0, 0, -30))
		if err != nil {
			return nil, err
		}
		var total int64
		for _, n := range byReason {
			total += n
		}
		stats["total_deleted"] = total
		stats["by_reason"] = byReason
		stats["deleted_last_30_days"] = recent
	}

	resolved, err := s.logs.Select(ctx, store.Query{Filters: map[string]interface{}{"is_resolved": true}})
	if err != nil {
		return nil, err
	}
	stats["currently_resolved"] = len(resolved)

	expired, err := s.FindExpired(ctx, retentionDays)
	if err != nil {
		return nil, err
	}
	stats["expired_ready_for_deletion"] = len(expired)

	return stats, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
