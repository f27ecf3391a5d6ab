package notes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cardupdater/core"
)

// importedNote is the on-disk shape of a note in an import file:
//
//	- id: 1
//	  fields:
//	    Front: 猫
//	    Back: ""
//
// Field order in the file becomes the note's field order.
type importedNote struct {
	ID     int64             `json:"id" yaml:"id"`
	Fields core.OrderedPairs `json:"fields" yaml:"fields"`
}

// ParseFile reads a JSON or YAML list of notes. Files ending in .json are
// decoded as JSON; anything else as YAML.
func ParseFile(path string) ([]*Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes a list of notes. Ids must be positive and unique, and every
// note needs at least one field.
func Parse(data []byte, isJSON bool) ([]*Note, error) {
	var raw []importedNote
	var err error
	if isJSON {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	seen := make(map[int64]bool, len(raw))
	out := make([]*Note, 0, len(raw))
	for i, r := range raw {
		if r.ID <= 0 {
			return nil, fmt.Errorf("note %d: id must be positive", i+1)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("note %d: duplicate id %d", i+1, r.ID)
		}
		seen[r.ID] = true
		if len(r.Fields) == 0 {
			return nil, fmt.Errorf("note %d: no fields", r.ID)
		}

		n := &Note{ID: r.ID, Fields: make([]Field, len(r.Fields))}
		for j, p := range r.Fields {
			n.Fields[j] = Field{Name: p.Key, Value: p.Value}
		}
		out = append(out, n)
	}
	return out, nil
}
