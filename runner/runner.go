// Package runner drives button actions: one note from the editor, or a
// selection of notes in bulk.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cardupdater/core"
	"cardupdater/handlers"
	"cardupdater/logging"
	"cardupdater/notes"
	"cardupdater/responses"
)

// User-facing messages emitted by the runners.
const (
	MsgNoteChanged     = "Note changed before response returned; no updates applied."
	MsgRequestFailed   = "OpenAI request failed. See log for details."
	MsgNoNotesSelected = "No notes selected."
	MsgBulkFailed      = "Bulk update failed. See log for details."
)

// ErrNoteChanged is returned when the editor moved to another note while the
// request was in flight.
var ErrNoteChanged = errors.New("note changed before response returned")

// Size limits for stored history text.
const (
	maxHistoryPrompt   = 5000
	maxHistoryResponse = 10000
)

// Reporter receives user-facing feedback.
type Reporter = core.Reporter

// APIClient issues one Responses request.
type APIClient interface {
	Create(ctx context.Context, req responses.Request) (*responses.Envelope, error)
}

// HistoryRecorder stores one row per API call.
type HistoryRecorder interface {
	RecordCall(ctx context.Context, record core.CallRecord) (int64, error)
}

// Runner holds the collaborators shared by single and bulk runs.
type Runner struct {
	cfg      *core.Config
	client   APIClient
	store    notes.Store
	reporter Reporter
	history  HistoryRecorder
	limiter  *rate.Limiter
	logger   *logging.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithHistory records every API call through h.
func WithHistory(h HistoryRecorder) Option {
	return func(r *Runner) {
		r.history = h
	}
}

// WithLimiter replaces the bulk pacing limiter. nil disables pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Runner) {
		r.limiter = l
	}
}

// New creates a Runner. A nil reporter discards feedback and a nil logger
// discards logs. Bulk pacing follows cfg.RequestsPerMinute.
func New(cfg *core.Config, client APIClient, store notes.Store, reporter Reporter, logger *logging.Logger, opts ...Option) *Runner {
	if reporter == nil {
		reporter = core.NopReporter{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		client:   client,
		store:    store,
		reporter: reporter,
		limiter:  NewLimiter(cfg.RequestsPerMinute),
		logger:   logger.Named("runner"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewLimiter returns a limiter allowing perMinute requests per minute with no
// burst, or nil when perMinute is not positive.
func NewLimiter(perMinute float64) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perMinute/60), 1)
}

// newRequest builds the API request for button with the expanded prompt.
func newRequest(button core.ButtonConfig, prompt string) responses.Request {
	return responses.Request{
		PromptID:      button.TrimmedPromptID(),
		PromptVersion: button.EffectiveVersion(),
		Model:         button.TrimmedModel(),
		Input:         prompt,
	}
}

// requestFailureMessage is the warning for a failed API call. The HTTP body
// is only shown in debug mode.
func requestFailureMessage(err error, debug bool) string {
	if httpErr, ok := responses.AsHTTPError(err); ok {
		msg := fmt.Sprintf("OpenAI request failed (HTTP %d).", httpErr.StatusCode)
		if debug && httpErr.Body != "" {
			msg += "\n" + httpErr.Body
		}
		return msg
	}
	return MsgRequestFailed
}

// requestErrorFields describes err for the log.
func requestErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	if httpErr, ok := responses.AsHTTPError(err); ok {
		fields = append(fields,
			zap.Int("status_code", httpErr.StatusCode),
			zap.String("body", httpErr.Body),
		)
	}
	return fields
}

// recordHistory writes record if a recorder is configured. Failures are
// logged and otherwise ignored.
func (r *Runner) recordHistory(ctx context.Context, record core.CallRecord, log *logging.Logger) {
	if r.history == nil {
		return
	}
	record.Prompt = handlers.TruncateText(record.Prompt, maxHistoryPrompt)
	record.Response = handlers.TruncateText(record.Response, maxHistoryResponse)
	record.CreatedAt = r.now()

	if _, err := r.history.RecordCall(context.WithoutCancel(ctx), record); err != nil {
		log.Warn("Failed to record processing history", zap.Error(err))
		return
	}
	log.Debug("Processing history recorded", zap.String("status", record.Status))
}
