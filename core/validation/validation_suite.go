package validation

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"cardupdater/core"
)

// ValidationStep represents a single validation step with its status.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult represents the complete result of validation suite execution.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// Check is an online check. It returns a short success message or an error.
type Check func(ctx context.Context) (string, error)

// ValidationSuite runs the offline config checks followed by optional
// database and API checks, printing each step as it completes.
type ValidationSuite struct {
	output          io.Writer
	configValidator *ConfigValidator
	databaseCheck   Check
	apiCheck        Check
	timeout         time.Duration
	showProgress    bool
	failFast        bool
}

// NewValidationSuite creates a suite for cfg loaded from configPath.
func NewValidationSuite(cfg *core.Config, configPath string) *ValidationSuite {
	return &ValidationSuite{
		output:          os.Stdout,
		configValidator: NewConfigValidator(cfg, configPath),
		timeout:         30 * time.Second,
		showProgress:    true,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithTimeout bounds each online check.
func (s *ValidationSuite) WithTimeout(timeout time.Duration) *ValidationSuite {
	s.timeout = timeout
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast stops validation on first failure if enabled.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// WithDatabaseCheck adds a "Note Database" step.
func (s *ValidationSuite) WithDatabaseCheck(check Check) *ValidationSuite {
	s.databaseCheck = check
	return s
}

// WithAPICheck adds an "API Access" step, run only when the endpoint and API
// key checks passed.
func (s *ValidationSuite) WithAPICheck(check Check) *ValidationSuite {
	s.apiCheck = check
	return s
}

// Validate runs all checks in order and returns the collected result.
func (s *ValidationSuite) Validate(ctx context.Context) SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, 6)

	if s.showProgress {
		s.printHeader("cardupdater Configuration Check")
	}

	offline := []struct {
		name string
		fn   func() ValidationResult
	}{
		{"Config File", s.configValidator.CheckConfigFile},
		{"Endpoint", s.configValidator.CheckEndpoint},
		{"API Key", s.configValidator.CheckAPIKey},
		{"Buttons", s.configValidator.CheckButtons},
	}
	for _, check := range offline {
		step := s.runStep(check.name, func() (StepStatus, string, error) {
			r := check.fn()
			return statusOf(r), r.Message, r.Error
		})
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			return s.finish(steps, startTime)
		}
	}

	if s.databaseCheck != nil {
		step := s.runOnline(ctx, "Note Database", s.databaseCheck)
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			return s.finish(steps, startTime)
		}
	}

	if s.apiCheck != nil {
		if s.configValidator.ValidateRequired() == nil {
			steps = append(steps, s.runOnline(ctx, "API Access", s.apiCheck))
		} else {
			steps = append(steps, s.skipStep("API Access", "Skipped due to configuration errors"))
		}
	}

	return s.finish(steps, startTime)
}

// ValidateQuick runs only the offline checks.
func (s *ValidationSuite) ValidateQuick() SuiteResult {
	quick := *s
	quick.databaseCheck = nil
	quick.apiCheck = nil
	return quick.Validate(context.Background())
}

func statusOf(r ValidationResult) StepStatus {
	switch {
	case !r.Valid:
		return StepFailed
	case r.Warning:
		return StepWarning
	default:
		return StepPassed
	}
}

func (s *ValidationSuite) runOnline(ctx context.Context, name string, check Check) ValidationStep {
	return s.runStep(name, func() (StepStatus, string, error) {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		msg, err := check(checkCtx)
		if err != nil {
			return StepFailed, msg, err
		}
		return StepPassed, msg, nil
	})
}

// runStep executes a validation step with timing and progress output.
func (s *ValidationSuite) runStep(name string, fn func() (StepStatus, string, error)) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		s.printStepStart(name)
	}

	startTime := time.Now()
	step.Status, step.Message, step.Error = fn()
	step.Latency = time.Since(startTime)

	if s.showProgress {
		s.printStep(step)
	}
	return step
}

func (s *ValidationSuite) skipStep(name, message string) ValidationStep {
	step := ValidationStep{Name: name, Status: StepSkipped, Message: message}
	if s.showProgress {
		s.printStep(step)
	}
	return step
}

func (s *ValidationSuite) finish(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := buildResult(steps, startTime)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// buildResult creates a SuiteResult from completed steps.
func buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}

	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		case StepWarning:
			result.Warnings++
		}
	}
	return result
}

// printHeader prints a validation header.
func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	color.New(color.FgCyan, color.Bold).Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

// printStepStart prints the step name before execution (for real-time feedback).
func (s *ValidationSuite) printStepStart(name string) {
	fmt.Fprintf(s.output, "  ◌ %s...", name)
}

// printStep prints a completed validation step with status indicator.
func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	// Clear the "running" line and print result
	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)

	if step.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", step.Message)
	}
	fmt.Fprintln(s.output)

	if step.Status == StepFailed && step.Error != nil {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

// printSummary prints the validation summary.
func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)

	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "━━━ Check Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed in %v)",
			result.PassedSteps, result.TotalSteps, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "━━━ Check Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		failColor.Fprintln(s.output, " ━━━")
	}

	fmt.Fprintln(s.output)
}

// GetFirstError returns the first error from failed steps, or nil if all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Status == StepFailed && step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	if r.Success {
		sb.WriteString("Check Passed: ")
	} else {
		sb.WriteString("Check Failed: ")
	}
	fmt.Fprintf(&sb, "%d/%d checks passed", r.PassedSteps, r.TotalSteps)
	if r.FailedSteps > 0 {
		fmt.Fprintf(&sb, ", %d failed", r.FailedSteps)
	}
	if r.Warnings > 0 {
		fmt.Fprintf(&sb, ", %d warnings", r.Warnings)
	}
	fmt.Fprintf(&sb, " (took %v)", r.Duration.Round(time.Millisecond))
	return sb.String()
}
