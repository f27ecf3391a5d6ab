package core

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Call status values stored in processing history.
const (
	CallStatusSuccess  = "success"  // note updated from the response
	CallStatusRejected = "rejected" // valid response, nothing written (success=false, note changed, no fields)
	CallStatusError    = "error"    // transport, HTTP or parse failure
)

// Run modes stored in processing history.
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

// CallRecord is one API call made on behalf of a note.
// It is written to processing history for auditing and debugging.
type CallRecord struct {
	// ID is assigned by the store
	ID int64 `json:"id"`
	// CorrelationID links the log lines of one call
	CorrelationID string `json:"correlation_id"`
	// NoteID is the note the request was issued for
	NoteID int64 `json:"note_id"`
	// Button is the label of the button that triggered the call
	Button string `json:"button"`
	// Mode is ModeSingle or ModeBulk
	Mode string `json:"mode"`
	// Prompt is the expanded input text ("" when no input was sent)
	Prompt string `json:"prompt"`
	// Response is the extracted output text
	Response string `json:"response"`
	// Model is the model override sent with the request
	Model string `json:"model"`
	// Status is one of the CallStatus constants
	Status string `json:"status"`
	// ErrorMessage holds failure details when Status is not success
	ErrorMessage string `json:"error_message,omitempty"`
	// Duration is how long the HTTP call took
	Duration time.Duration `json:"duration"`
	// CreatedAt is when the call completed
	CreatedAt time.Time `json:"created_at"`
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
// Prompt and response bodies are left out; they can be large.
func (r CallRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("correlation_id", r.CorrelationID)
	enc.AddInt64("note_id", r.NoteID)
	enc.AddString("button", r.Button)
	enc.AddString("mode", r.Mode)
	enc.AddString("status", r.Status)
	if r.ErrorMessage != "" {
		enc.AddString("error", r.ErrorMessage)
	}
	enc.AddDuration("duration", r.Duration)
	return nil
}
