package handlers

import (
	"reflect"
	"testing"

	"cardupdater/core"
	"cardupdater/notes"
)

func mustPayload(t *testing.T, text string) *ResultPayload {
	t.Helper()
	p, err := CheckResult(text)
	if err != nil {
		t.Fatalf("CheckResult(%s) error = %v", text, err)
	}
	return p
}

func TestApplyFieldMap_RoundTrip(t *testing.T) {
	note := testNote()
	fm := core.FieldMap{{ResponseKey: "x", NoteField: "Back"}}

	report := ApplyFieldMap(note, fm, mustPayload(t, `{"success":true,"x":"v"}`))

	if v, _ := note.Get("Back"); v != "v" {
		t.Errorf("Back = %q, want v", v)
	}
	if !reflect.DeepEqual(report.Updated, []string{"Back"}) {
		t.Errorf("Updated = %v", report.Updated)
	}
}

func TestApplyFieldMap_PartialResult(t *testing.T) {
	note := testNote()
	fm := core.FieldMap{
		{ResponseKey: "meaning", NoteField: "Back"},
		{ResponseKey: "reading", NoteField: "Reading"},
		{ResponseKey: "example", NoteField: "Example"},
		{ResponseKey: "notes", NoteField: "Extra"},
	}

	report := ApplyFieldMap(note, fm, mustPayload(t,
		`{"success":true,"meaning":"cat (animal)","example":"猫が好き"}`))

	want := UpdateReport{
		Updated:       []string{"Back"},
		MissingKeys:   []string{"reading", "notes"},
		MissingFields: []string{"Example"},
	}
	if !reflect.DeepEqual(report, want) {
		t.Errorf("report = %+v, want %+v", report, want)
	}
	if v, _ := note.Get("Reading"); v != "neko" {
		t.Errorf("Reading touched: %q", v)
	}
	if v, _ := note.Get("Back"); v != "cat (animal)" {
		t.Errorf("Back = %q", v)
	}
	if len(note.Fields) != 3 {
		t.Errorf("fields added to note: %v", note.FieldNames())
	}
}

func TestUpdateReport_Notices(t *testing.T) {
	tests := []struct {
		name   string
		report UpdateReport
		want   []Notice
	}{
		{
			name:   "updated only",
			report: UpdateReport{Updated: []string{"Back", "Extra"}},
			want:   []Notice{{Text: "Updated fields: Back, Extra"}},
		},
		{
			name:   "nothing updated",
			report: UpdateReport{MissingKeys: []string{"a"}},
			want: []Notice{
				{Text: "No fields were updated."},
				{Warning: true, Text: "Missing response keys: a"},
			},
		},
		{
			name:   "all three lists",
			report: UpdateReport{Updated: []string{"Back"}, MissingKeys: []string{"a", "b"}, MissingFields: []string{"X"}},
			want: []Notice{
				{Text: "Updated fields: Back"},
				{Warning: true, Text: "Missing response keys: a, b"},
				{Warning: true, Text: "Missing note fields: X"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Notices(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Notices() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMissingTargetFields(t *testing.T) {
	fm := core.FieldMap{
		{ResponseKey: "a", NoteField: "Back"},
		{ResponseKey: "b", NoteField: "Example"},
		{ResponseKey: "c", NoteField: "Audio"},
	}
	got := MissingTargetFields(&notes.Note{Fields: []notes.Field{{Name: "Back"}}}, fm)
	if !reflect.DeepEqual(got, []string{"Example", "Audio"}) {
		t.Errorf("MissingTargetFields() = %v", got)
	}
	if got := MissingTargetFields(testNote(), fm[:1]); got != nil {
		t.Errorf("MissingTargetFields() = %v, want nil", got)
	}
}
