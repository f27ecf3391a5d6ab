package db

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult contains statistics about a cleanup operation.
type CleanupResult struct {
	// HistoryDeleted is the number of processing_history rows removed
	HistoryDeleted int64
	// Duration is how long the cleanup took
	Duration time.Duration
}

// PruneHistory deletes processing history older than retentionDays and runs
// VACUUM to reclaim disk space. Notes are never touched.
//
// Example:
//
//	result, err := database.PruneHistory(ctx, 30)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("removed %d rows\n", result.HistoryDeleted)
func (d *Database) PruneHistory(ctx context.Context, retentionDays int) (CleanupResult, error) {
	start := time.Now()
	result := CleanupResult{}

	if retentionDays < 0 {
		return result, fmt.Errorf("retentionDays must be non-negative, got %d", retentionDays)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return result, ErrClosed
	}

	res, err := d.db.ExecContext(ctx,
		`DELETE FROM processing_history WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", retentionDays),
	)
	if err != nil {
		return result, fmt.Errorf("failed to delete from processing_history: %w", err)
	}
	result.HistoryDeleted, err = res.RowsAffected()
	if err != nil {
		return result, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := ctx.Err(); err != nil {
		// rows are gone; only the VACUUM was skipped
		result.Duration = time.Since(start)
		return result, err
	}

	if _, err := d.db.ExecContext(ctx, "VACUUM"); err != nil {
		result.Duration = time.Since(start)
		return result, fmt.Errorf("cleanup succeeded but VACUUM failed: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}
