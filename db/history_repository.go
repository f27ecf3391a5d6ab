package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cardupdater/core"
)

// HistoryRepository records API calls in processing_history.
type HistoryRepository struct {
	db *Database
}

// NewHistoryRepository creates a repository on database.
func NewHistoryRepository(database *Database) *HistoryRepository {
	return &HistoryRepository{db: database}
}

// RecordCall inserts one call and returns its id. A zero CreatedAt is stored
// as the current time.
func (r *HistoryRepository) RecordCall(ctx context.Context, record core.CallRecord) (int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}

	var createdAt any
	if !record.CreatedAt.IsZero() {
		createdAt = record.CreatedAt.UTC().Format(timeLayout)
	}

	result, err := conn.ExecContext(ctx, `
		INSERT INTO processing_history (
			correlation_id, note_id, button, mode, prompt, response, model,
			status, error_message, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`,
		record.CorrelationID,
		record.NoteID,
		record.Button,
		record.Mode,
		nullString(record.Prompt),
		nullString(record.Response),
		nullString(record.Model),
		record.Status,
		nullString(record.ErrorMessage),
		record.Duration.Milliseconds(),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert processing history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

const historyColumns = `
	id, correlation_id, note_id, button, mode,
	COALESCE(prompt, ''), COALESCE(response, ''), COALESCE(model, ''),
	status, COALESCE(error_message, ''), duration_ms, created_at`

// RecentCalls returns the newest calls first. limit <= 0 means 10.
func (r *HistoryRepository) RecentCalls(ctx context.Context, limit int) ([]core.CallRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.query(ctx, `SELECT`+historyColumns+`
		FROM processing_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

// CallsForNote returns the newest calls for one note first.
func (r *HistoryRepository) CallsForNote(ctx context.Context, noteID int64, limit int) ([]core.CallRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.query(ctx, `SELECT`+historyColumns+`
		FROM processing_history
		WHERE note_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, noteID, limit)
}

// CallsByCorrelationID returns the calls logged under one correlation id.
func (r *HistoryRepository) CallsByCorrelationID(ctx context.Context, correlationID string) ([]core.CallRecord, error) {
	return r.query(ctx, `SELECT`+historyColumns+`
		FROM processing_history
		WHERE correlation_id = ?
		ORDER BY id`, correlationID)
}

// CountCalls returns the number of recorded calls.
func (r *HistoryRepository) CountCalls(ctx context.Context) (int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM processing_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count processing history: %w", err)
	}
	return n, nil
}

func (r *HistoryRepository) query(ctx context.Context, query string, args ...any) ([]core.CallRecord, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query processing history: %w", err)
	}
	defer rows.Close()

	var records []core.CallRecord
	for rows.Next() {
		rec, err := scanCallRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processing history rows: %w", err)
	}
	return records, nil
}

func scanCallRecord(rows *sql.Rows) (core.CallRecord, error) {
	var rec core.CallRecord
	var durationMS int64
	var createdAt string

	err := rows.Scan(
		&rec.ID,
		&rec.CorrelationID,
		&rec.NoteID,
		&rec.Button,
		&rec.Mode,
		&rec.Prompt,
		&rec.Response,
		&rec.Model,
		&rec.Status,
		&rec.ErrorMessage,
		&durationMS,
		&createdAt,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan processing history row: %w", err)
	}

	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt, _ = time.ParseInLocation(timeLayout, createdAt, time.UTC)
	return rec, nil
}

// nullString stores empty text as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
