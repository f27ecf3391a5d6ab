package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Response processing errors. Each one stops processing before any note is
// touched.
var (
	// ErrNoTextOutput is returned when the envelope carried no usable text.
	ErrNoTextOutput = errors.New("no text output in response")
	// ErrInvalidJSON is returned when the output text is not a JSON object.
	ErrInvalidJSON = errors.New("invalid JSON in response")
	// ErrNotSuccessful is returned when the result does not declare success=true.
	ErrNotSuccessful = errors.New("result reported success=false")
)

// User-facing messages for the processing gates.
const (
	MsgNoTextOutput  = "OpenAI returned no text output."
	MsgInvalidJSON   = "OpenAI response was not valid JSON."
	MsgNotSuccessful = "OpenAI reported success=false."
)

// ApplicationError is a well-formed result with success other than true.
// It is a normal negative outcome; Message is what the model said went wrong.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// Unwrap lets callers match with errors.Is(err, ErrNotSuccessful).
func (e *ApplicationError) Unwrap() error {
	return ErrNotSuccessful
}

// ResultPayload is the JSON object the model produced. Values stay raw until
// a mapped key is looked up.
type ResultPayload struct {
	values map[string]json.RawMessage
}

// ParseResultPayload parses the extracted output text.
//
// Example:
//
//	payload, err := handlers.ParseResultPayload(`{"success": true, "answer": "cat"}`)
//	text, _ := payload.Text("answer") // "cat"
func ParseResultPayload(text string) (*ResultPayload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoTextOutput
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidJSON)
	}
	return &ResultPayload{values: values}, nil
}

// CheckResult runs the three gates in order: text present, valid JSON,
// success literally true. A returned payload is safe to apply.
func CheckResult(text string) (*ResultPayload, error) {
	payload, err := ParseResultPayload(text)
	if err != nil {
		return nil, err
	}
	if !payload.Succeeded() {
		return nil, &ApplicationError{Message: payload.FailureMessage()}
	}
	return payload, nil
}

// Succeeded reports whether "success" is the JSON literal true. Strings such
// as "true" and numbers such as 1 do not count.
func (p *ResultPayload) Succeeded() bool {
	raw, ok := p.values["success"]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("true"))
}

// FailureMessage returns the first meaningful of "error" and "message", or
// MsgNotSuccessful.
func (p *ResultPayload) FailureMessage() string {
	for _, key := range []string{"error", "message"} {
		if raw, ok := p.values[key]; ok && isTruthy(raw) {
			return CoerceText(raw)
		}
	}
	return MsgNotSuccessful
}

// Has reports whether key is present (even with a null value).
func (p *ResultPayload) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Text returns the value of key coerced to note text.
func (p *ResultPayload) Text(key string) (string, bool) {
	raw, ok := p.values[key]
	if !ok {
		return "", false
	}
	return CoerceText(raw), true
}

// CoerceText turns a JSON value into field text: strings verbatim, null as
// "", anything else in compact JSON form (3, true, ["a","b"]).
func CoerceText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// isTruthy treats null, false, any numeric zero, "", {} and [] as absent.
func isTruthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", `""`, "{}", "[]":
		return false
	}
	if c := trimmed[0]; c == '-' || (c >= '0' && c <= '9') {
		if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
			return f != 0
		}
	}
	return CoerceText(raw) != ""
}

// UserMessage maps a processing error to the text shown to the user.
// It returns "" for errors that are not processing errors.
func UserMessage(err error) string {
	var appErr *ApplicationError
	switch {
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.Is(err, ErrNoTextOutput):
		return MsgNoTextOutput
	case errors.Is(err, ErrInvalidJSON):
		return MsgInvalidJSON
	case errors.Is(err, ErrNotSuccessful):
		return MsgNotSuccessful
	default:
		return ""
	}
}
