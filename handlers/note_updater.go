package handlers

import (
	"strings"

	"cardupdater/core"
	"cardupdater/notes"
)

// UpdateReport lists what ApplyFieldMap did, in field-map order.
type UpdateReport struct {
	Updated       []string // note fields written
	MissingKeys   []string // response keys absent from the result
	MissingFields []string // note fields absent from the note
}

// Changed reports whether any field was written.
func (r UpdateReport) Changed() bool {
	return len(r.Updated) > 0
}

// Notice is one user-facing line produced from an UpdateReport.
type Notice struct {
	Warning bool
	Text    string
}

// Notices renders the report. The three lists are independent and can all
// appear together; an empty update still says so.
func (r UpdateReport) Notices() []Notice {
	var out []Notice
	if r.Changed() {
		out = append(out, Notice{Text: "Updated fields: " + strings.Join(r.Updated, ", ")})
	} else {
		out = append(out, Notice{Text: "No fields were updated."})
	}
	if len(r.MissingKeys) > 0 {
		out = append(out, Notice{Warning: true, Text: "Missing response keys: " + strings.Join(r.MissingKeys, ", ")})
	}
	if len(r.MissingFields) > 0 {
		out = append(out, Notice{Warning: true, Text: "Missing note fields: " + strings.Join(r.MissingFields, ", ")})
	}
	return out
}

// ApplyFieldMap writes every mapped response key that exists in the result
// into the mapped note field, if the note has that field. Nothing else in the
// note changes. The caller decides whether to save.
//
// Example:
//
//	report := handlers.ApplyFieldMap(note, button.FieldMap, payload)
//	if report.Changed() {
//	    err = store.Save(ctx, note)
//	}
func ApplyFieldMap(note *notes.Note, fieldMap core.FieldMap, payload *ResultPayload) UpdateReport {
	var report UpdateReport
	for _, m := range fieldMap {
		value, ok := payload.Text(m.ResponseKey)
		if !ok {
			report.MissingKeys = append(report.MissingKeys, m.ResponseKey)
			continue
		}
		if err := note.Set(m.NoteField, value); err != nil {
			report.MissingFields = append(report.MissingFields, m.NoteField)
			continue
		}
		report.Updated = append(report.Updated, m.NoteField)
	}
	return report
}

// MissingTargetFields returns the mapped note fields the note does not have.
func MissingTargetFields(note *notes.Note, fieldMap core.FieldMap) []string {
	var missing []string
	for _, m := range fieldMap {
		if !note.Has(m.NoteField) {
			missing = append(missing, m.NoteField)
		}
	}
	return missing
}
