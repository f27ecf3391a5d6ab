package logging

import "testing"

func TestEncoderConfigs(t *testing.T) {
	json := NewEncoderConfig()
	if json.MessageKey != FieldMessage || json.TimeKey != FieldTimestamp {
		t.Errorf("NewEncoderConfig() keys = %q/%q", json.MessageKey, json.TimeKey)
	}
	console := NewConsoleEncoderConfig()
	if console.MessageKey != FieldMessage {
		t.Errorf("console MessageKey = %q", console.MessageKey)
	}
	if console.EncodeTime == nil || console.EncodeLevel == nil {
		t.Error("console encoders not set")
	}
}
