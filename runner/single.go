package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cardupdater/core"
	"cardupdater/handlers"
	"cardupdater/logging"
	"cardupdater/notes"
	"cardupdater/responses"
)

// NoteAccessor exposes the note currently loaded in the editor.
// Current returns nil when nothing is loaded.
type NoteAccessor interface {
	Current() *notes.Note
}

// StaticNote is a NoteAccessor that always returns the same note.
type StaticNote struct {
	Note *notes.Note
}

// Current returns the wrapped note.
func (s StaticNote) Current() *notes.Note {
	return s.Note
}

// State is the lifecycle position of a single-note task.
type State int

const (
	StateIdle State = iota
	StateDispatched
	StateAwaitingResponse
	StateApplied
	StateRejected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatched:
		return "dispatched"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateApplied:
		return "applied"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateApplied || s == StateRejected || s == StateFailed
}

// Task is an API call started by Dispatch. Its result is consumed once by
// Complete on the caller's goroutine.
type Task struct {
	button        core.ButtonConfig
	noteID        int64
	prompt        string
	correlationID string
	log           *logging.Logger

	done     chan struct{}
	envelope *responses.Envelope
	err      error
	duration time.Duration

	mu    sync.Mutex
	state State
}

// Done is closed when the API call has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// NoteID is the id of the note the task was dispatched for.
func (t *Task) NoteID() int64 {
	return t.noteID
}

// CorrelationID ties the task's log lines and history row together.
func (t *Task) CorrelationID() string {
	return t.correlationID
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Dispatch checks preconditions, builds the prompt from the loaded note and
// starts the API call in the background. A failed precondition is reported
// as a warning and returned; no request is made.
func (r *Runner) Dispatch(ctx context.Context, button core.ButtonConfig, editor NoteAccessor) (*Task, error) {
	if err := r.checkSingle(button, editor); err != nil {
		r.reporter.Warning(handlers.PreconditionMessage(err))
		return nil, err
	}

	note := editor.Current()
	correlationID := handlers.GenerateCorrelationID()
	task := &Task{
		button:        button,
		noteID:        note.ID,
		prompt:        handlers.BuildPrompt(button.Prompt, note, r.logger),
		correlationID: correlationID,
		log: r.logger.With(
			zap.String("correlation_id", correlationID),
			zap.Int64("note_id", note.ID),
			zap.String("button", button.Label()),
		),
		done:  make(chan struct{}),
		state: StateDispatched,
	}

	task.log.Info("OpenAI update in progress",
		zap.String("prompt_preview", handlers.TruncateText(task.prompt, 100)))

	go r.call(ctx, task, newRequest(button, task.prompt))
	return task, nil
}

func (r *Runner) checkSingle(button core.ButtonConfig, editor NoteAccessor) error {
	if err := handlers.ValidateButton(r.cfg, button); err != nil {
		return err
	}
	if editor == nil || editor.Current() == nil {
		return core.ErrNoNoteLoaded()
	}
	return nil
}

// call runs on its own goroutine and never touches the note.
func (r *Runner) call(ctx context.Context, task *Task, req responses.Request) {
	defer close(task.done)
	task.setState(StateAwaitingResponse)

	start := time.Now()
	task.err = handlers.SafeCall(func() error {
		env, err := r.client.Create(ctx, req)
		task.envelope = env
		return err
	})
	task.duration = time.Since(start)
}

// Complete waits for task and applies its result to the editor's current
// note. It must be called on the goroutine that owns the note. The returned
// error is nil when the note was updated or nothing needed updating.
func (r *Runner) Complete(ctx context.Context, task *Task, editor NoteAccessor) (State, error) {
	<-task.done
	log := task.log

	record := core.CallRecord{
		CorrelationID: task.correlationID,
		NoteID:        task.noteID,
		Button:        task.button.Label(),
		Mode:          core.ModeSingle,
		Prompt:        task.prompt,
		Model:         task.button.TrimmedModel(),
		Duration:      task.duration,
	}
	finish := func(state State, status string, err error) (State, error) {
		record.Status = status
		if err != nil {
			record.ErrorMessage = err.Error()
		}
		r.recordHistory(ctx, record, log)
		task.setState(state)
		return state, err
	}

	if task.err != nil {
		log.Error("OpenAI request failed", requestErrorFields(task.err)...)
		r.reporter.Warning(requestFailureMessage(task.err, r.cfg.Debug))
		return finish(StateFailed, core.CallStatusError, task.err)
	}

	text := task.envelope.OutputText()
	record.Response = text

	payload, err := handlers.CheckResult(text)
	if err != nil {
		r.reporter.Warning(handlers.UserMessage(err))
		if errors.Is(err, handlers.ErrNotSuccessful) {
			log.Info("OpenAI reported failure", zap.String("message", err.Error()))
			return finish(StateRejected, core.CallStatusRejected, err)
		}
		log.Error("Unusable OpenAI response", zap.Error(err),
			zap.String("output_preview", handlers.TruncateText(text, 200)))
		return finish(StateFailed, core.CallStatusError, err)
	}

	var current *notes.Note
	if editor != nil {
		current = editor.Current()
	}
	if current == nil || current.ID != task.noteID {
		log.Warn("Editor note changed while request was in flight")
		r.reporter.Warning(MsgNoteChanged)
		return finish(StateRejected, core.CallStatusRejected, ErrNoteChanged)
	}

	report := handlers.ApplyFieldMap(current, task.button.FieldMap, payload)
	if report.Changed() {
		if err := r.store.Save(context.WithoutCancel(ctx), current); err != nil {
			log.Error("Failed to save note", zap.Error(err))
			r.reporter.Warning(fmt.Sprintf("Failed to save note: %v", err))
			return finish(StateFailed, core.CallStatusError, err)
		}
	}

	for _, notice := range report.Notices() {
		if notice.Warning {
			r.reporter.Warning(notice.Text)
		} else {
			r.reporter.Info(notice.Text)
		}
	}

	log.Info("OpenAI update finished",
		zap.Strings("updated", report.Updated),
		zap.Strings("missing_keys", report.MissingKeys),
		zap.Strings("missing_fields", report.MissingFields),
		zap.Duration("duration", task.duration),
	)

	if !report.Changed() {
		return finish(StateRejected, core.CallStatusRejected, nil)
	}
	return finish(StateApplied, core.CallStatusSuccess, nil)
}

// Run dispatches and completes one update on the current goroutine.
func (r *Runner) Run(ctx context.Context, button core.ButtonConfig, editor NoteAccessor) (State, error) {
	task, err := r.Dispatch(ctx, button, editor)
	if err != nil {
		return StateIdle, err
	}
	return r.Complete(ctx, task, editor)
}
