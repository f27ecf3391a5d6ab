package notes

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Get hands out copies, so a caller only
// changes stored state through Save.
type MemoryStore struct {
	mu    sync.Mutex
	notes map[int64]*Note
	saves map[int64]int
}

// Compile-time check that MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with copies of the given notes.
func NewMemoryStore(seed ...*Note) *MemoryStore {
	s := &MemoryStore{
		notes: make(map[int64]*Note),
		saves: make(map[int64]int),
	}
	for _, n := range seed {
		s.notes[n.ID] = n.Clone()
	}
	return s
}

// Get returns a copy of the note with the given id.
func (s *MemoryStore) Get(_ context.Context, id int64) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	return n.Clone(), nil
}

// Save stores a copy of note, replacing any previous version.
func (s *MemoryStore) Save(_ context.Context, note *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes[note.ID] = note.Clone()
	s.saves[note.ID]++
	return nil
}

// SaveCount returns how many times the note with id was saved.
func (s *MemoryStore) SaveCount(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[id]
}

// IDs returns all stored note ids in ascending order.
func (s *MemoryStore) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.notes))
	for id := range s.notes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
