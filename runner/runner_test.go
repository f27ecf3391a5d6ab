package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"cardupdater/core"
	"cardupdater/notes"
	"cardupdater/responses"
)

// fakeClient answers each call with the next scripted reply.
type fakeClient struct {
	mu       sync.Mutex
	requests []responses.Request
	reply    func(call int, req responses.Request) (*responses.Envelope, error)
}

func (f *fakeClient) Create(_ context.Context, req responses.Request) (*responses.Envelope, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	call := len(f.requests)
	f.mu.Unlock()
	return f.reply(call, req)
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// recordingReporter keeps everything it is told.
type recordingReporter struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	progress []string
}

func (r *recordingReporter) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func (r *recordingReporter) Warning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

func (r *recordingReporter) Progress(current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, fmt.Sprintf("%d/%d", current, total))
}

type fakeHistory struct {
	mu      sync.Mutex
	records []core.CallRecord
}

func (h *fakeHistory) RecordCall(_ context.Context, record core.CallRecord) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return int64(len(h.records)), nil
}

// mutableEditor lets a test swap the loaded note mid-flight.
type mutableEditor struct {
	mu   sync.Mutex
	note *notes.Note
}

func (e *mutableEditor) Current() *notes.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.note
}

func (e *mutableEditor) set(n *notes.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.note = n
}

func textEnvelope(text string) *responses.Envelope {
	return &responses.Envelope{Output: []responses.OutputItem{{
		Type:    "message",
		Content: []responses.ContentBlock{{Type: "output_text", Text: text}},
	}}}
}

func replyText(text string) func(int, responses.Request) (*responses.Envelope, error) {
	return func(int, responses.Request) (*responses.Envelope, error) {
		return textEnvelope(text), nil
	}
}

func testConfig() *core.Config {
	return &core.Config{APIKey: "sk-test", PromptKey: "id"}
}

func testButton() core.ButtonConfig {
	return core.ButtonConfig{
		Name:     "Define",
		Prompt:   "Define {{Front}}",
		PromptID: "pmpt_1",
		FieldMap: core.FieldMap{
			{ResponseKey: "meaning", NoteField: "Back"},
			{ResponseKey: "reading", NoteField: "Reading"},
		},
	}
}

func cardNote(id int64, front string) *notes.Note {
	return &notes.Note{ID: id, Fields: []notes.Field{
		{Name: "Front", Value: front},
		{Name: "Back", Value: ""},
		{Name: "Reading", Value: ""},
	}}
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0) != nil {
		t.Error("NewLimiter(0) should disable pacing")
	}
	if NewLimiter(-5) != nil {
		t.Error("NewLimiter(-5) should disable pacing")
	}
	l := NewLimiter(120)
	if l == nil {
		t.Fatal("NewLimiter(120) returned nil")
	}
	if got := float64(l.Limit()); got != 2 {
		t.Errorf("Limit() = %v, want 2 per second", got)
	}
}

func TestRequestFailureMessage(t *testing.T) {
	httpErr := &responses.HTTPError{StatusCode: 429, Body: `{"error":"slow down"}`}

	tests := []struct {
		name  string
		err   error
		debug bool
		want  string
	}{
		{"http without debug", httpErr, false, "OpenAI request failed (HTTP 429)."},
		{"http with debug", httpErr, true, "OpenAI request failed (HTTP 429).\n{\"error\":\"slow down\"}"},
		{"wrapped http", fmt.Errorf("call: %w", httpErr), false, "OpenAI request failed (HTTP 429)."},
		{"transport", &responses.TransportError{Err: errors.New("dial tcp")}, true, MsgRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requestFailureMessage(tt.err, tt.debug); got != tt.want {
				t.Errorf("requestFailureMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRequest(t *testing.T) {
	button := core.ButtonConfig{PromptID: " pmpt_9 ", PromptVersion: "Latest", Model: " gpt-4o "}
	req := newRequest(button, "hello")
	if req.PromptID != "pmpt_9" || req.PromptVersion != "" || req.Model != "gpt-4o" || req.Input != "hello" {
		t.Errorf("newRequest() = %+v", req)
	}
}

func TestRecordHistory_Truncates(t *testing.T) {
	history := &fakeHistory{}
	r := New(testConfig(), &fakeClient{}, notes.NewMemoryStore(), nil, nil, WithHistory(history))

	r.recordHistory(context.Background(), core.CallRecord{
		Prompt:   strings.Repeat("p", maxHistoryPrompt+10),
		Response: strings.Repeat("r", maxHistoryResponse+10),
		Status:   core.CallStatusSuccess,
	}, r.logger)

	if len(history.records) != 1 {
		t.Fatalf("records = %d, want 1", len(history.records))
	}
	rec := history.records[0]
	if n := len([]rune(rec.Prompt)); n > maxHistoryPrompt+1 {
		t.Errorf("prompt runes = %d, want truncated", n)
	}
	if n := len([]rune(rec.Response)); n > maxHistoryResponse+1 {
		t.Errorf("response runes = %d, want truncated", n)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}
