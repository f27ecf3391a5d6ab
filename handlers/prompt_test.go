package handlers

import (
	"strings"
	"testing"

	"cardupdater/notes"
)

func testNote() *notes.Note {
	return &notes.Note{ID: 42, Fields: []notes.Field{
		{Name: "Front", Value: "猫"},
		{Name: "Back", Value: "cat"},
		{Name: "Reading", Value: "neko"},
	}}
}

func TestExpandFields(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"empty template", "", ""},
		{"no placeholders", "Explain this", "Explain this"},
		{"single placeholder", "Word: {{Front}}", "Word: 猫"},
		{"trimmed name", "Word: {{ Front }}", "Word: 猫"},
		{"adjacent placeholders", "{{Front}}{{Reading}}", "猫neko"},
		{"repeated placeholder", "{{Back}} / {{Back}}", "cat / cat"},
		{"missing field becomes empty", "[{{Extra}}]", "[]"},
		{"unclosed braces stay", "{{Front", "{{Front"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandFields(tt.template, testNote(), nil); got != tt.want {
				t.Errorf("ExpandFields(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestExpandFields_RemovesAllMatchedPlaceholders(t *testing.T) {
	templates := []string{
		"{{Front}} means {{Back}}; read {{Reading}}",
		"{{ Front }}{{Back}}{{ Reading}}",
		"Q: {{Front}}\nA: {{Back}}\n",
	}
	for _, tmpl := range templates {
		got := ExpandFields(tmpl, testNote(), nil)
		if strings.Contains(got, "{{") || strings.Contains(got, "}}") {
			t.Errorf("ExpandFields(%q) = %q still contains braces", tmpl, got)
		}
	}
}

func TestExpandFields_DoesNotReexpandValues(t *testing.T) {
	n := &notes.Note{ID: 1, Fields: []notes.Field{{Name: "A", Value: "{{B}}"}, {Name: "B", Value: "x"}}}
	if got := ExpandFields("{{A}}", n, nil); got != "{{B}}" {
		t.Errorf("ExpandFields() = %q, want field value verbatim", got)
	}
}

func TestEnsureJSONInstruction(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{"appends instruction", "Explain 猫", "Explain 猫\n\n" + JSONInstruction},
		{"already mentions json", "Reply in json please", "Reply in json please"},
		{"mixed case mention", "Use JSON.", "Use JSON."},
		{"json inside a word", "Return a JSONL line", "Return a JSONL line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnsureJSONInstruction(tt.in); got != tt.want {
				t.Errorf("EnsureJSONInstruction(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnsureJSONInstruction_Idempotent(t *testing.T) {
	for _, in := range []string{"", "x", "Explain {{Front}}", "json", "multi\nline"} {
		once := EnsureJSONInstruction(in)
		twice := EnsureJSONInstruction(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Define {{Front}}", testNote(), nil)
	want := "Define 猫\n\n" + JSONInstruction
	if got != want {
		t.Errorf("BuildPrompt() = %q, want %q", got, want)
	}
	if got := BuildPrompt("{{Missing}}", testNote(), nil); got != "" {
		t.Errorf("BuildPrompt() with only a missing field = %q, want empty", got)
	}
}
