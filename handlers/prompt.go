// Package handlers provides the prompt, response and field-update atoms that
// the runners compose.
package handlers

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"cardupdater/logging"
	"cardupdater/notes"
)

// JSONInstruction is appended to prompts that never mention JSON, because
// the API refuses json_object output unless the input asks for JSON.
const JSONInstruction = "Return output as JSON."

// placeholderPattern matches {{ name }}; non-greedy so {{a}}{{b}} is two matches.
var placeholderPattern = regexp.MustCompile(`{{(.*?)}}`)

// ExpandFields replaces every {{name}} in template with the value of the
// note field name (surrounding spaces in name are ignored). Placeholders for
// fields the note does not have become "" and are logged at debug level.
//
// Example:
//
//	note := &notes.Note{ID: 1, Fields: []notes.Field{{Name: "Front", Value: "猫"}}}
//	handlers.ExpandFields("Explain {{ Front }}", note, nil)
//	// "Explain 猫"
func ExpandFields(template string, note *notes.Note, log *logging.Logger) string {
	if template == "" {
		return ""
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])
		if value, ok := note.Get(name); ok {
			return value
		}
		if log != nil {
			log.Debug("Prompt field not found in note",
				zap.String("field", name),
				zap.Int64("note_id", note.ID),
			)
		}
		return ""
	})
}

// EnsureJSONInstruction appends JSONInstruction unless text already contains
// "json" in any case. Empty text stays empty: a button may rely entirely on
// its stored prompt and send no input at all.
//
// The function is idempotent.
func EnsureJSONInstruction(text string) string {
	if text == "" || strings.Contains(strings.ToLower(text), "json") {
		return text
	}
	return text + "\n\n" + JSONInstruction
}

// BuildPrompt expands template against note and ensures the JSON instruction.
func BuildPrompt(template string, note *notes.Note, log *logging.Logger) string {
	return EnsureJSONInstruction(ExpandFields(template, note, log))
}
