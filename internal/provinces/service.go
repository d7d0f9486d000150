package provinces

import (
	"context"
	"fmt"

	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/store"
)

// analysisParams is the cache key of the analysis under the locations collection,
// so any location mutation drops it together with the location lists
const analysisParams = "province-analysis"

// RunLog stores standardization runs and their steps
type RunLog struct {
	runs  store.Collection[models.StandardizationRun]
	steps store.Collection[models.StandardizationStep]
}

// NewRunLog creates a run log
func NewRunLog(runs store.Collection[models.StandardizationRun], steps store.Collection[models.StandardizationStep]) *RunLog {
	return &RunLog{runs: runs, steps: steps}
}

// Record implements RunRecorder
func (l *RunLog) Record(ctx context.Context, run *models.StandardizationRun) error {
	_, err := l.runs.Insert(ctx, map[string]interface{}{
		"id":             run.ID,
		"group_key":      run.GroupKey,
		"canonical_name": run.CanonicalName,
		"mode":           run.Mode,
		"status":         run.Status,
		"rows_affected":  run.RowsAffected,
		"error":          run.Error,
		"started_at":     run.StartedAt,
		"finished_at":    run.FinishedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	for _, step := range run.Steps {
		_, err := l.steps.Insert(ctx, map[string]interface{}{
			"run_id":        run.ID,
			"seq":           step.Seq,
			"from_name":     step.FromName,
			"to_name":       step.ToName,
			"status":        step.Status,
			"rows_affected": step.RowsAffected,
			"error":         step.Error,
		})
		if err != nil {
			return fmt.Errorf("failed to save step %d: %w", step.Seq, err)
		}
	}
	return nil
}

// Recent returns the latest runs with their steps
func (l *RunLog) Recent(ctx context.Context, limit int) ([]models.StandardizationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := l.runs.Select(ctx, store.Query{Order: "started_at desc", Limit: limit})
	if err != nil {
		return nil, err
	}
	for i := range runs {
		steps, err := l.steps.Select(ctx, store.Query{
			Filters: map[string]interface{}{"run_id": runs[i].ID},
			Order:   "seq asc",
		})
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

// Service serves the province analysis and standardization to the admin console
type Service struct {
	locations    store.Collection[models.Location]
	cache        *querycache.Cache
	standardizer *Standardizer
}

// NewService creates the province service
func NewService(locations store.Collection[models.Location], cache *querycache.Cache, standardizer *Standardizer) *Service {
	return &Service{locations: locations, cache: cache, standardizer: standardizer}
}

// Analysis returns the province report, cached until the next location mutation
func (s *Service) Analysis(ctx context.Context) (*Analysis, error) {
	if s.cache == nil {
		return s.analyze(ctx)
	}
	return querycache.Fetch(s.cache, models.CollectionLocations, analysisParams, func() (*Analysis, error) {
		return s.analyze(ctx)
	})
}

func (s *Service) analyze(ctx context.Context) (*Analysis, error) {
	locations, err := s.locations.Select(ctx, store.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	return Analyze(locations), nil
}

// Standardize recomputes the group from current data and standardizes it
func (s *Service) Standardize(ctx context.Context, key string) (*models.StandardizationRun, error) {
	a, err := s.analyze(ctx)
	if err != nil {
		return nil, err
	}
	g, ok := a.FindGroup(key)
	if !ok {
		return nil, fmt.Errorf("province group %s: %w", key, store.ErrNotFound)
	}
	return s.standardizer.Standardize(ctx, g)
}
