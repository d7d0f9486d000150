package store

import (
	"context"
	"fmt"
	"time"

	"marketplace-console/internal/models"
)

// DeleteLogs records physically deleted rows
type DeleteLogs struct {
	table Collection[models.DeleteLog]
}

// NewDeleteLogs creates a delete log over the delete_logs collection
func NewDeleteLogs(table Collection[models.DeleteLog]) *DeleteLogs {
	return &DeleteLogs{table: table}
}

// RecordDeletion appends one entry
func (d *DeleteLogs) RecordDeletion(ctx context.Context, entry *models.DeleteLog) error {
	if entry.DeletedAt.IsZero() {
		entry.DeletedAt = time.Now()
	}
	_, err := d.table.Insert(ctx, map[string]interface{}{
		"collection": entry.Collection,
		"record_id":  entry.RecordID,
		"summary":    entry.Summary,
		"deleted_by": entry.DeletedBy,
		"deleted_at": entry.DeletedAt,
		"reason":     entry.Reason,
	})
	if err != nil {
		return fmt.Errorf("failed to record deletion: %w", err)
	}
	return nil
}

// Recent returns the latest entries, optionally for one collection
func (d *DeleteLogs) Recent(ctx context.Context, collection string, limit int) ([]models.DeleteLog, error) {
	if limit <= 0 {
		limit = 100
	}
	q := Query{Order: "deleted_at desc", Limit: limit}
	if collection != "" {
		q.Filters = map[string]interface{}{"collection": collection}
	}
	return d.table.Select(ctx, q)
}

// ByReason counts entries per reason, with the number recorded since a cutoff
func (d *DeleteLogs) ByReason(ctx context.Context, since time.Time) (map[string]int64, int64, error) {
	rows, err := d.table.Select(ctx, Query{})
	if err != nil {
		return nil, 0, err
	}
	counts := make(map[string]int64)
	var recent int64
	for _, row := range rows {
		counts[row.Reason]++
		if !row.DeletedAt.Before(since) {
			recent++
		}
	}
	return counts, recent, nil
}
