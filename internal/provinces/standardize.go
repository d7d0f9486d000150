package provinces

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

// ErrEmptyGroup is returned when there is nothing to standardize
var ErrEmptyGroup = errors.New("standardization needs at least one variant")

// Rename rewrites every location spelled From to To
type Rename struct {
	From string
	To   string
}

// Renamer applies one rename and reports the rows changed
type Renamer interface {
	RenameProvince(ctx context.Context, from, to string) (int64, error)
}

// AtomicRenamer applies a batch of renames all-or-nothing
type AtomicRenamer interface {
	Renamer
	RenameProvinces(ctx context.Context, renames []Rename) ([]int64, error)
}

// BulkUpdater is the store operation a Renamer needs
type BulkUpdater interface {
	UpdateWhere(ctx context.Context, filters, values map[string]interface{}) (int64, error)
}

// CollectionRenamer renames through any bulk-updatable collection, one statement per rename
type CollectionRenamer struct {
	locations BulkUpdater
}

// NewCollectionRenamer creates a non-atomic renamer
func NewCollectionRenamer(locations BulkUpdater) *CollectionRenamer {
	return &CollectionRenamer{locations: locations}
}

// RenameProvince implements Renamer
func (r *CollectionRenamer) RenameProvince(ctx context.Context, from, to string) (int64, error) {
	return r.locations.UpdateWhere(ctx,
		map[string]interface{}{"province_name": from},
		map[string]interface{}{"province_name": to})
}

// TxRenamer renames inside a database transaction
type TxRenamer struct {
	table *store.Table[models.Location]
}

// NewTxRenamer creates an atomic renamer over a gorm table
func NewTxRenamer(table *store.Table[models.Location]) *TxRenamer {
	return &TxRenamer{table: table}
}

// RenameProvince implements Renamer
func (r *TxRenamer) RenameProvince(ctx context.Context, from, to string) (int64, error) {
	return NewCollectionRenamer(r.table).RenameProvince(ctx, from, to)
}

// RenameProvinces implements AtomicRenamer
func (r *TxRenamer) RenameProvinces(ctx context.Context, renames []Rename) ([]int64, error) {
	counts := make([]int64, len(renames))
	err := r.table.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		renamer := NewCollectionRenamer(r.table.WithTx(tx))
		for i, rn := range renames {
			n, err := renamer.RenameProvince(ctx, rn.From, rn.To)
			if err != nil {
				return fmt.Errorf("rename %q: %w", rn.From, err)
			}
			counts[i] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// PartialFailureError reports a standardization that stopped part way.
// Applied steps stay applied; Run.Steps says which ones.
type PartialFailureError struct {
	Run *models.StandardizationRun
	Err error
}

func (e *PartialFailureError) Error() string {
	applied, failed, skipped := 0, 0, 0
	for _, s := range e.Run.Steps {
		switch s.Status {
		case models.StepStatusApplied:
			applied++
		case models.StepStatusFailed:
			failed++
		case models.StepStatusSkipped:
			skipped++
		}
	}
	return fmt.Sprintf("standardization of %s stopped: %d applied, %d failed, %d skipped: %v",
		e.Run.GroupKey, applied, failed, skipped, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// RunRecorder persists standardization runs
type RunRecorder interface {
	Record(ctx context.Context, run *models.StandardizationRun) error
}

// Standardizer rewrites the spellings of a duplicate group to its canonical one
type Standardizer struct {
	renamer Renamer
	runs    RunRecorder
	cache   *querycache.Cache
	hub     *realtime.Hub

	// Atomic uses a single transaction when the renamer supports it
	Atomic bool
}

// NewStandardizer creates a standardizer. runs, cache and hub may be nil.
func NewStandardizer(renamer Renamer, runs RunRecorder, cache *querycache.Cache, hub *realtime.Hub) *Standardizer {
	return &Standardizer{renamer: renamer, runs: runs, cache: cache, hub: hub, Atomic: true}
}

// Canonical picks the variant with the most locations; the first maximum wins
func Canonical(variants []Variant) (Variant, error) {
	if len(variants) == 0 {
		return Variant{}, ErrEmptyGroup
	}
	best := variants[0]
	for _, v := range variants[1:] {
		if v.LocationCount > best.LocationCount {
			best = v
		}
	}
	return best, nil
}

// Plan returns the renames that bring every variant to the canonical spelling
func Plan(variants []Variant) (Variant, []Rename, error) {
	canonical, err := Canonical(variants)
	if err != nil {
		return Variant{}, nil, err
	}
	renames := make([]Rename, 0, len(variants)-1)
	for _, v := range variants {
		if v.Name == canonical.Name {
			continue
		}
		renames = append(renames, Rename{From: v.Name, To: canonical.Name})
	}
	return canonical, renames, nil
}

// Standardize rewrites every non-canonical spelling of g
func (s *Standardizer) Standardize(ctx context.Context, g Group) (*models.StandardizationRun, error) {
	canonical, renames, err := Plan(g.Variants)
	if err != nil {
		return nil, err
	}

	run := &models.StandardizationRun{
		ID:            uuid.NewString(),
		GroupKey:      g.Key,
		CanonicalName: canonical.Name,
		StartedAt:     time.Now(),
		Steps:         make([]models.StandardizationStep, len(renames)),
	}
	for i, rn := range renames {
		run.Steps[i] = models.StandardizationStep{
			RunID:    run.ID,
			Seq:      i + 1,
			FromName: rn.From,
			ToName:   rn.To,
			Status:   models.StepStatusSkipped,
		}
	}

	var runErr error
	if atomic, ok := s.renamer.(AtomicRenamer); ok && s.Atomic {
		run.Mode = "atomic"
		runErr = s.runAtomic(ctx, atomic, run, renames)
	} else {
		run.Mode = "saga"
		runErr = s.runSaga(ctx, run, renames)
	}
	run.FinishedAt = time.Now()

	applied := 0
	for _, step := range run.Steps {
		if step.Status == models.StepStatusApplied {
			applied++
			run.RowsAffected += step.RowsAffected
		}
	}
	switch {
	case runErr == nil:
		run.Status = models.RunStatusSucceeded
	case applied > 0:
		run.Status = models.RunStatusPartial
	default:
		run.Status = models.RunStatusFailed
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if applied > 0 {
		s.changed()
	}
	if s.runs != nil {
		if err := s.runs.Record(ctx, run); err != nil {
			logging.Logger.Warnf("Standardizer: Failed to record run %s: %v", run.ID, err)
		}
	}

	if runErr != nil {
		logging.Logger.Errorf("Standardizer: %s -> %q %s after %d/%d steps: %v",
			g.Key, canonical.Name, run.Status, applied, len(renames), runErr)
		if run.Mode == "saga" {
			return run, &PartialFailureError{Run: run, Err: runErr}
		}
		return run, fmt.Errorf("failed to standardize %s: %w", g.Key, runErr)
	}

	logging.Logger.Infof("Standardizer: %s -> %q (%s, %d rows)", g.Key, canonical.Name, run.Mode, run.RowsAffected)
	return run, nil
}

func (s *Standardizer) runAtomic(ctx context.Context, renamer AtomicRenamer, run *models.StandardizationRun, renames []Rename) error {
	if len(renames) == 0 {
		return nil
	}
	counts, err := renamer.RenameProvinces(ctx, renames)
	if err != nil {
		return err
	}
	for i := range run.Steps {
		run.Steps[i].Status = models.StepStatusApplied
		run.Steps[i].RowsAffected = counts[i]
	}
	return nil
}

// runSaga applies steps in order and stops at the first failure; applied steps are not undone
func (s *Standardizer) runSaga(ctx context.Context, run *models.StandardizationRun, renames []Rename) error {
	for i, rn := range renames {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.renamer.RenameProvince(ctx, rn.From, rn.To)
		if err != nil {
			run.Steps[i].Status = models.StepStatusFailed
			run.Steps[i].Error = err.Error()
			return fmt.Errorf("step %d (%q): %w", i+1, rn.From, err)
		}
		run.Steps[i].Status = models.StepStatusApplied
		run.Steps[i].RowsAffected = n
	}
	return nil
}

func (s *Standardizer) changed() {
	if s.cache != nil {
		s.cache.Invalidate(models.CollectionLocations)
	}
	if s.hub != nil {
		s.hub.Notify(models.CollectionLocations, realtime.EventUpdate, "")
	}
}
