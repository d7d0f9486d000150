package opqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-console/internal/crud"
	"marketplace-console/internal/forms"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/store"
)

// ErrUnknownCollection is returned when no editor handles the queued collection
var ErrUnknownCollection = errors.New("no editor for collection")

// Store is the pending operation table
type Store interface {
	store.Collection[models.PendingOperation]
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)
}

// EnqueueRequest is a mutation the console made while offline
type EnqueueRequest struct {
	Collection string            `json:"collection" binding:"required"`
	Operation  string            `json:"operation" binding:"required,oneof=create update delete"`
	RecordID   string            `json:"record_id"`
	Payload    map[string]string `json:"payload"`
	ClientID   string            `json:"client_id"`
}

// FlushResult summarizes one pass over the due operations
type FlushResult struct {
	Processed     int      `json:"processed"`
	Done          int      `json:"done"`
	Retrying      int      `json:"retrying"`
	Failed        int      `json:"failed"`
	PermanentFail int      `json:"permanent_fail"`
	Errors        []string `json:"errors,omitempty"`
}

// Stats counts operations by status
type Stats struct {
	Pending       int64 `json:"pending"`
	Processing    int64 `json:"processing"`
	Done          int64 `json:"done"`
	Failed        int64 `json:"failed"`
	PermanentFail int64 `json:"permanent_fail"`
}

// Queue stores offline mutations and replays them through the collection editors.
// Replays are not idempotent: a create applied twice inserts twice.
type Queue struct {
	ops      Store
	mutators map[string]crud.Mutator
	now      func() time.Time

	flushMu sync.Mutex
}

// New creates a queue that replays operations through mutators, keyed by collection
func New(ops Store, mutators ...crud.Mutator) *Queue {
	q := &Queue{
		ops:      ops,
		mutators: make(map[string]crud.Mutator, len(mutators)),
		now:      time.Now,
	}
	for _, m := range mutators {
		q.mutators[m.Collection()] = m
	}
	return q
}

// Enqueue stores an operation for a later flush
func (q *Queue) Enqueue(ctx context.Context, req EnqueueRequest) (*models.PendingOperation, error) {
	var fields []forms.FieldError
	if _, ok := q.mutators[req.Collection]; !ok {
		fields = append(fields, forms.FieldError{Field: "collection", Message: "is not a queueable collection"})
	}
	switch req.Operation {
	case models.OperationCreate:
	case models.OperationUpdate, models.OperationDelete:
		if req.RecordID == "" {
			fields = append(fields, forms.FieldError{Field: "record_id", Message: "is required"})
		}
	default:
		fields = append(fields, forms.FieldError{Field: "operation", Message: "must be one of: create update delete"})
	}
	if len(fields) > 0 {
		return nil, &forms.ValidationError{Form: "queued_operation", Fields: fields}
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	id := uuid.NewString()
	if _, err := q.ops.Insert(ctx, map[string]interface{}{
		"id":         id,
		"collection": req.Collection,
		"operation":  req.Operation,
		"record_id":  req.RecordID,
		"payload":    string(payload),
		"client_id":  req.ClientID,
		"status":     models.QueueStatusPending,
	}); err != nil {
		return nil, fmt.Errorf("failed to enqueue operation: %w", err)
	}

	logging.Logger.Infof("Queue: Enqueued %s on %s (id=%s)", req.Operation, req.Collection, id)
	return q.ops.Get(ctx, id)
}

// Due returns up to limit operations ready to run: pending ones first, then
// failed ones whose retry time has passed, each in creation order
func (q *Queue) Due(ctx context.Context, limit int) ([]models.PendingOperation, error) {
	pending, err := q.ops.Select(ctx, store.Query{
		Filters: map[string]interface{}{"status": models.QueueStatusPending},
		Order:   "created_at asc",
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending operations: %w", err)
	}
	if limit > 0 && len(pending) >= limit {
		return pending, nil
	}

	failed, err := q.ops.Select(ctx, store.Query{
		Filters: map[string]interface{}{"status": models.QueueStatusFailed},
		Order:   "created_at asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load failed operations: %w", err)
	}
	now := q.now()
	for _, op := range failed {
		if op.NextRetryAt == nil || op.NextRetryAt.After(now) {
			continue
		}
		pending = append(pending, op)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

// Flush replays due operations once. Manual and scheduled flushes never overlap.
func (q *Queue) Flush(ctx context.Context, limit int) (*FlushResult, error) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	due, err := q.Due(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &FlushResult{}
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		op := due[i]
		status, err := q.process(ctx, &op)
		result.Processed++
		switch status {
		case models.QueueStatusDone:
			result.Done++
		case models.QueueStatusPermanentFail:
			result.PermanentFail++
		case models.QueueStatusFailed:
			if op.NextRetryAt != nil {
				result.Retrying++
			} else {
				result.Failed++
			}
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", op.ID, err))
		}
	}

	if result.Processed > 0 {
		logging.Logger.Infof("Queue: Flushed %d operations (done=%d retrying=%d failed=%d permanent=%d)",
			result.Processed, result.Done, result.Retrying, result.Failed, result.PermanentFail)
	}
	return result, nil
}

// process applies one operation and records the outcome. It returns the new status.
func (q *Queue) process(ctx context.Context, op *models.PendingOperation) (string, error) {
	op.Attempts++
	if err := q.ops.Update(ctx, op.ID, map[string]interface{}{
		"status":   models.QueueStatusProcessing,
		"attempts": op.Attempts,
	}); err != nil {
		logging.Logger.Errorf("Queue: Failed to mark %s processing: %v", op.ID, err)
		return "", err
	}

	resultID, err := q.apply(ctx, op)
	now := q.now()
	values := map[string]interface{}{}

	switch {
	case err == nil:
		op.Status = models.QueueStatusDone
		op.LastError = ""
		op.NextRetryAt = nil
		op.CompletedAt = &now
		values["result_id"] = resultID
		logging.Logger.Infof("Queue: Completed %s %s on %s", op.Operation, op.ID, op.Collection)

	case Permanent(err):
		op.Status = models.QueueStatusPermanentFail
		op.LastError = err.Error()
		op.NextRetryAt = nil
		op.CompletedAt = &now
		logging.Logger.Warnf("Queue: Permanent failure for %s: %v", op.ID, err)

	case op.Attempts >= models.MaxRetryAttempts:
		op.Status = models.QueueStatusFailed
		op.LastError = fmt.Sprintf("max retries exceeded (%d): %v", op.Attempts, err)
		op.NextRetryAt = nil
		op.CompletedAt = &now
		logging.Logger.Errorf("Queue: Max retries exceeded for %s (%d attempts)", op.ID, op.Attempts)

	default:
		delay := models.GetNextRetryDelay(op.Attempts - 1)
		next := now.Add(delay)
		op.Status = models.QueueStatusFailed
		op.LastError = err.Error()
		op.NextRetryAt = &next
		logging.Logger.Warnf("Queue: Scheduling retry for %s in %v (attempt %d/%d)",
			op.ID, delay, op.Attempts, models.MaxRetryAttempts)
	}

	values["status"] = op.Status
	values["last_error"] = op.LastError
	values["next_retry_at"] = op.NextRetryAt
	values["completed_at"] = op.CompletedAt
	if uerr := q.ops.Update(ctx, op.ID, values); uerr != nil {
		logging.Logger.Errorf("Queue: Failed to save status of %s: %v", op.ID, uerr)
	}
	return op.Status, err
}

func (q *Queue) apply(ctx context.Context, op *models.PendingOperation) (string, error) {
	m, ok := q.mutators[op.Collection]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, op.Collection)
	}

	var payload map[string]string
	if op.Payload != "" {
		if err := json.Unmarshal([]byte(op.Payload), &payload); err != nil {
			return "", &forms.ValidationError{Form: "queued_operation", Fields: []forms.FieldError{{Field: "payload", Message: "is not a JSON object of strings"}}}
		}
	}

	switch op.Operation {
	case models.OperationCreate:
		return m.Create(ctx, payload)
	case models.OperationUpdate:
		return op.RecordID, m.Update(ctx, op.RecordID, payload)
	case models.OperationDelete:
		// confirmed when it was queued
		return op.RecordID, m.Delete(ctx, op.RecordID, true, op.ClientID)
	default:
		return "", &forms.ValidationError{Form: "queued_operation", Fields: []forms.FieldError{{Field: "operation", Message: "is unknown"}}}
	}
}

// Permanent reports whether replaying the operation again cannot succeed
func Permanent(err error) bool {
	var verr *forms.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrUnknownColumn) ||
		errors.Is(err, crud.ErrConfirmationRequired) ||
		errors.Is(err, ErrUnknownCollection)
}

// Stats counts operations by status
func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	for status, dst := range map[string]*int64{
		models.QueueStatusPending:       &s.Pending,
		models.QueueStatusProcessing:    &s.Processing,
		models.QueueStatusDone:          &s.Done,
		models.QueueStatusFailed:        &s.Failed,
		models.QueueStatusPermanentFail: &s.PermanentFail,
	} {
		n, err := q.ops.Count(ctx, map[string]interface{}{"status": status})
		if err != nil {
			return s, fmt.Errorf("failed to count %s operations: %w", status, err)
		}
		*dst = n
	}
	return s, nil
}

// List returns recent operations, newest first
func (q *Queue) List(ctx context.Context, status string, limit int) ([]models.PendingOperation, error) {
	if limit <= 0 {
		limit = 100
	}
	query := store.Query{Order: "created_at desc", Limit: limit}
	if status != "" {
		query.Filters = map[string]interface{}{"status": status}
	}
	return q.ops.Select(ctx, query)
}
