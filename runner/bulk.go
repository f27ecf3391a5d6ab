package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cardupdater/core"
	"cardupdater/handlers"
)

// BulkResult counts what a bulk run did with each note.
type BulkResult struct {
	Updated   int  `json:"updated"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Cancelled bool `json:"cancelled"`
}

// Summary renders the result the way it is shown to the user.
func (b BulkResult) Summary() string {
	summary := fmt.Sprintf("Updated: %d, Skipped: %d, Failed: %d", b.Updated, b.Skipped, b.Failed)
	if b.Cancelled {
		summary = "Cancelled. " + summary
	}
	return summary
}

// Processed is the number of notes that were counted.
func (b BulkResult) Processed() int {
	return b.Updated + b.Skipped + b.Failed
}

type bulkOutcome int

const (
	outcomeUpdated bulkOutcome = iota
	outcomeSkipped
	outcomeFailed
	outcomeCancelled
)

// RunBulk updates each note in noteIDs in order with one button. Cancelling
// ctx stops the loop before the next note; a request already in flight is
// allowed to finish and its note is counted. A panic inside the loop is
// recovered and returned together with the counts so far.
func (r *Runner) RunBulk(ctx context.Context, button core.ButtonConfig, noteIDs []int64) (BulkResult, error) {
	if err := handlers.ValidateButton(r.cfg, button); err != nil {
		r.reporter.Warning(handlers.PreconditionMessage(err))
		return BulkResult{}, err
	}
	if len(noteIDs) == 0 {
		r.reporter.Info(MsgNoNotesSelected)
		return BulkResult{}, nil
	}

	log := r.logger.With(
		zap.String("button", button.Label()),
		zap.Int("total", len(noteIDs)),
	)
	log.Info("Bulk update started")
	start := time.Now()

	var result BulkResult
	err := handlers.SafeCall(func() error {
		r.bulkLoop(ctx, button, noteIDs, &result)
		return nil
	})
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var panicErr *handlers.PanicError
		if errors.As(err, &panicErr) {
			fields = append(fields, zap.ByteString("stack", panicErr.Stack))
		}
		log.Error("Bulk update failed", fields...)
		r.reporter.Warning(MsgBulkFailed)
		return result, err
	}

	log.Info("Bulk update finished",
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("duration", time.Since(start)),
	)
	r.reporter.Info(result.Summary())
	return result, nil
}

func (r *Runner) bulkLoop(ctx context.Context, button core.ButtonConfig, noteIDs []int64, result *BulkResult) {
	total := len(noteIDs)
	for i, id := range noteIDs {
		if ctx.Err() != nil {
			result.Cancelled = true
			return
		}

		switch r.processBulkNote(ctx, button, id) {
		case outcomeUpdated:
			result.Updated++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		case outcomeCancelled:
			result.Cancelled = true
			return
		}
		r.reporter.Progress(i+1, total)
	}
}

// processBulkNote handles one note. Only pacing waits observe ctx; note I/O
// and the API call run to completion once started.
func (r *Runner) processBulkNote(ctx context.Context, button core.ButtonConfig, noteID int64) bulkOutcome {
	callCtx := context.WithoutCancel(ctx)
	log := r.logger.With(zap.Int64("note_id", noteID))

	if len(button.FieldMap) == 0 {
		log.Debug("Skipping note: button has no field_map")
		return outcomeSkipped
	}

	note, err := r.store.Get(callCtx, noteID)
	if err != nil {
		log.Error("Failed to load note", zap.Error(err))
		return outcomeFailed
	}

	if missing := handlers.MissingTargetFields(note, button.FieldMap); len(missing) > 0 {
		log.Debug("Skipping note: missing fields", zap.Strings("fields", missing))
		return outcomeSkipped
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			log.Debug("Pacing wait interrupted", zap.Error(err))
			return outcomeCancelled
		}
	}

	correlationID := handlers.GenerateCorrelationID()
	log = log.With(zap.String("correlation_id", correlationID))
	prompt := handlers.BuildPrompt(button.Prompt, note, log)

	record := core.CallRecord{
		CorrelationID: correlationID,
		NoteID:        noteID,
		Button:        button.Label(),
		Mode:          core.ModeBulk,
		Prompt:        prompt,
		Model:         button.TrimmedModel(),
	}
	finish := func(outcome bulkOutcome, status string, err error) bulkOutcome {
		record.Status = status
		if err != nil {
			record.ErrorMessage = err.Error()
		}
		r.recordHistory(callCtx, record, log)
		return outcome
	}

	start := time.Now()
	env, err := r.client.Create(callCtx, newRequest(button, prompt))
	record.Duration = time.Since(start)
	if err != nil {
		log.Error("OpenAI request failed", requestErrorFields(err)...)
		return finish(outcomeFailed, core.CallStatusError, err)
	}

	text := env.OutputText()
	record.Response = text

	payload, err := handlers.CheckResult(text)
	if err != nil {
		if errors.Is(err, handlers.ErrNotSuccessful) {
			log.Debug("OpenAI reported failure", zap.String("message", err.Error()))
			return finish(outcomeFailed, core.CallStatusRejected, err)
		}
		log.Error("Unusable OpenAI response", zap.Error(err))
		return finish(outcomeFailed, core.CallStatusError, err)
	}

	report := handlers.ApplyFieldMap(note, button.FieldMap, payload)
	if len(report.MissingKeys) > 0 {
		log.Debug("Missing response keys", zap.Strings("keys", report.MissingKeys))
	}
	if !report.Changed() {
		return finish(outcomeSkipped, core.CallStatusRejected, nil)
	}

	if err := r.store.Save(callCtx, note); err != nil {
		log.Error("Failed to save note", zap.Error(err))
		return finish(outcomeFailed, core.CallStatusError, err)
	}
	log.Debug("Note updated", zap.Strings("fields", report.Updated))
	return finish(outcomeUpdated, core.CallStatusSuccess, nil)
}
