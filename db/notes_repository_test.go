package db

import (
	"context"
	"errors"
	"testing"

	"cardupdater/notes"
)

func TestNoteRepository_SaveAndGet(t *testing.T) {
	repo := NewNoteRepository(openTestDatabase(t))
	ctx := context.Background()

	note := &notes.Note{ID: 42, Fields: []notes.Field{
		{Name: "Front", Value: "猫"},
		{Name: "Back", Value: ""},
		{Name: "Reading", Value: "neko"},
	}}
	if err := repo.Save(ctx, note); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != 42 {
		t.Errorf("ID = %d", got.ID)
	}
	wantOrder := []string{"Front", "Back", "Reading"}
	for i, name := range got.FieldNames() {
		if name != wantOrder[i] {
			t.Errorf("field %d = %q, want %q", i, name, wantOrder[i])
		}
	}
	if v, _ := got.Get("Front"); v != "猫" {
		t.Errorf("Front = %q", v)
	}

	// update in place
	if err := got.Set("Back", "cat"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	again, _ := repo.Get(ctx, 42)
	if v, _ := again.Get("Back"); v != "cat" {
		t.Errorf("Back after update = %q", v)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestNoteRepository_GetMissing(t *testing.T) {
	repo := NewNoteRepository(openTestDatabase(t))

	_, err := repo.Get(context.Background(), 7)
	if !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestNoteRepository_SaveNil(t *testing.T) {
	repo := NewNoteRepository(openTestDatabase(t))
	if err := repo.Save(context.Background(), nil); err == nil {
		t.Error("expected error for nil note")
	}
}

func TestNoteRepository_SaveAllListIDs(t *testing.T) {
	repo := NewNoteRepository(openTestDatabase(t))
	ctx := context.Background()

	batch := []*notes.Note{
		{ID: 3, Fields: []notes.Field{{Name: "Front", Value: "c"}}},
		{ID: 1, Fields: []notes.Field{{Name: "Front", Value: "a"}}},
		{ID: 2, Fields: []notes.Field{{Name: "Front", Value: "b"}}},
	}
	if err := repo.SaveAll(ctx, batch); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	ids, err := repo.IDs(ctx)
	if err != nil {
		t.Fatalf("IDs() error = %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("IDs() = %v, want [1 2 3]", ids)
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List(0) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List(0) = %d notes, want 3", len(all))
	}

	two, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(two) != 2 || two[0].ID != 1 || two[1].ID != 2 {
		t.Errorf("List(2) = %+v", two)
	}
}

func TestNoteRepository_SaveAllIsAtomic(t *testing.T) {
	repo := NewNoteRepository(openTestDatabase(t))
	ctx := context.Background()

	batch := []*notes.Note{
		{ID: 1, Fields: []notes.Field{{Name: "Front", Value: "a"}}},
		nil,
	}
	if err := repo.SaveAll(ctx, batch); err == nil {
		t.Fatal("expected error for nil note in batch")
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("Count() = %d after failed batch, want 0", n)
	}
}
