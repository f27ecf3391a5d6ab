// Package notes defines the flashcard note model and the store contract the
// runners write through.
package notes

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Store when no note has the requested id.
	ErrNotFound = errors.New("note not found")

	// ErrUnknownField is returned by Set for a field the note type does not have.
	ErrUnknownField = errors.New("note has no such field")
)

// Field is one named text field of a note.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Note is a flashcard record: a numeric identity plus an ordered list of
// fields. The field set is fixed by the note type; values change.
type Note struct {
	ID     int64   `json:"id"`
	Fields []Field `json:"fields"`
}

// Has reports whether the note has a field called name.
func (n *Note) Has(name string) bool {
	return n.index(name) >= 0
}

// Get returns the value of the named field and whether it exists.
func (n *Note) Get(name string) (string, bool) {
	if i := n.index(name); i >= 0 {
		return n.Fields[i].Value, true
	}
	return "", false
}

// Set replaces the value of an existing field. Fields are never added.
func (n *Note) Set(name, value string) error {
	i := n.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	n.Fields[i].Value = value
	return nil
}

// FieldNames returns the field names in note-type order.
func (n *Note) FieldNames() []string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
	}
	return names
}

// Clone returns a deep copy of the note.
func (n *Note) Clone() *Note {
	c := &Note{ID: n.ID, Fields: make([]Field, len(n.Fields))}
	copy(c.Fields, n.Fields)
	return c
}

func (n *Note) index(name string) int {
	for i, f := range n.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Store loads and persists notes. Save is the "flush" of the host
// application: it writes every field of the note back under its id.
type Store interface {
	Get(ctx context.Context, id int64) (*Note, error)
	Save(ctx context.Context, note *Note) error
}
