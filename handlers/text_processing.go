package handlers

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// GenerateCorrelationID returns a short id that ties together the log lines
// and history row of one API call.
//
// Example:
//
//	callLog := log.With(zap.String("correlation_id", handlers.GenerateCorrelationID()))
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// TruncateText shortens text to at most maxRunes runes, appending "…" when
// something was cut. Used for log previews of prompts and bodies.
func TruncateText(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}
