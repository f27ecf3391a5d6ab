package core

import (
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestCallRecord_MarshalLogObject(t *testing.T) {
	rec := CallRecord{
		CorrelationID: "abcd1234",
		NoteID:        7,
		Button:        "Explain",
		Mode:          ModeSingle,
		Prompt:        "large prompt body",
		Status:        CallStatusError,
		ErrorMessage:  "HTTP 500",
		Duration:      2 * time.Second,
	}

	enc := zapcore.NewMapObjectEncoder()
	if err := rec.MarshalLogObject(enc); err != nil {
		t.Fatalf("MarshalLogObject() error = %v", err)
	}

	if enc.Fields["note_id"] != int64(7) {
		t.Errorf("note_id = %v, want 7", enc.Fields["note_id"])
	}
	if enc.Fields["error"] != "HTTP 500" {
		t.Errorf("error = %v", enc.Fields["error"])
	}
	if _, ok := enc.Fields["prompt"]; ok {
		t.Error("prompt body should not be logged")
	}
}
