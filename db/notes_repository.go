package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cardupdater/notes"
)

// NoteRepository is a notes.Store backed by the notes table. Fields are kept
// as a JSON array so their order survives a round trip.
type NoteRepository struct {
	db *Database
}

// Compile-time check that NoteRepository implements notes.Store
var _ notes.Store = (*NoteRepository)(nil)

// NewNoteRepository creates a repository on database.
func NewNoteRepository(database *Database) *NoteRepository {
	return &NoteRepository{db: database}
}

// Get loads the note with id, or returns an error wrapping notes.ErrNotFound.
func (r *NoteRepository) Get(ctx context.Context, id int64) (*notes.Note, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	var raw string
	err = conn.QueryRowContext(ctx, `SELECT fields FROM notes WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, notes.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note %d: %w", id, err)
	}
	return decodeNote(id, raw)
}

// Save writes every field of note under its id, inserting it if new.
func (r *NoteRepository) Save(ctx context.Context, note *notes.Note) error {
	conn, err := r.db.conn()
	if err != nil {
		return err
	}
	return saveNote(ctx, conn, note)
}

// SaveAll stores notes in one transaction; either all are written or none.
func (r *NoteRepository) SaveAll(ctx context.Context, batch []*notes.Note) error {
	conn, err := r.db.conn()
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	for _, note := range batch {
		if err := saveNote(ctx, tx, note); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notes: %w", err)
	}
	return nil
}

// List returns notes in id order. limit <= 0 returns all of them.
func (r *NoteRepository) List(ctx context.Context, limit int) ([]*notes.Note, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := conn.QueryContext(ctx, `SELECT id, fields FROM notes ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var out []*notes.Note
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		note, err := decodeNote(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	return out, nil
}

// IDs returns every stored note id in ascending order.
func (r *NoteRepository) IDs(ctx context.Context) ([]int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `SELECT id FROM notes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query note ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored notes.
func (r *NoteRepository) Count(ctx context.Context) (int64, error) {
	conn, err := r.db.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveNote(ctx context.Context, exec execer, note *notes.Note) error {
	if note == nil {
		return fmt.Errorf("note is nil")
	}
	fields := note.Fields
	if fields == nil {
		fields = []notes.Field{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode note %d: %w", note.ID, err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO notes (id, fields) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET
			fields = excluded.fields,
			updated_at = CURRENT_TIMESTAMP`,
		note.ID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save note %d: %w", note.ID, err)
	}
	return nil
}

func decodeNote(id int64, raw string) (*notes.Note, error) {
	var fields []notes.Field
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode note %d: %w", id, err)
	}
	return &notes.Note{ID: id, Fields: fields}, nil
}
