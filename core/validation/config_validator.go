// Package validation runs the offline and online checks behind
// `cardupdater check`.
package validation

import (
	"fmt"
	"strings"

	"cardupdater/core"
)

// ValidationResult represents the result of a configuration validation check.
type ValidationResult struct {
	Valid   bool
	Warning bool // valid, but worth pointing out
	Message string
	Error   error
}

// ConfigValidator checks a loaded configuration without touching the network.
type ConfigValidator struct {
	cfg        *core.Config
	configPath string
}

// NewConfigValidator creates a validator for cfg, which was loaded from
// configPath ("" when no file was given).
func NewConfigValidator(cfg *core.Config, configPath string) *ConfigValidator {
	return &ConfigValidator{cfg: cfg, configPath: configPath}
}

// CheckConfigFile reports whether the config file was found and read.
// Running on environment settings alone is allowed but flagged.
func (v *ConfigValidator) CheckConfigFile() ValidationResult {
	if v.cfg.SourcePath != "" {
		return ValidationResult{Valid: true, Message: "Loaded " + v.cfg.SourcePath}
	}
	msg := "No config file; using environment only"
	if v.configPath != "" {
		if err := CheckFileExists(v.configPath); err != nil {
			msg = err.Error() + "; using environment only"
		}
	}
	return ValidationResult{Valid: true, Warning: true, Message: msg}
}

// CheckEndpoint validates the Responses endpoint URL.
func (v *ConfigValidator) CheckEndpoint() ValidationResult {
	if err := ValidateEndpointURL(v.cfg.Endpoint); err != nil {
		return ValidationResult{
			Message: "Invalid endpoint " + v.cfg.Endpoint,
			Error:   core.ErrInvalidSetting("endpoint", err.Error()),
		}
	}
	return ValidationResult{Valid: true, Message: v.cfg.Endpoint}
}

// CheckAPIKey reports whether an API key was resolved. The key itself is
// never printed.
func (v *ConfigValidator) CheckAPIKey() ValidationResult {
	if !v.cfg.HasAPIKey() {
		err := core.ErrMissingAPIKey()
		return ValidationResult{Message: err.Message, Error: err}
	}
	return ValidationResult{Valid: true, Message: "API key configured"}
}

// CheckButtons verifies that buttons exist and that each can run: a prompt
// id and a non-empty field_map.
func (v *ConfigValidator) CheckButtons() ValidationResult {
	if len(v.cfg.Buttons) == 0 {
		return ValidationResult{
			Valid:   true,
			Warning: true,
			Message: "No buttons configured",
		}
	}

	var problems []string
	for i, b := range v.cfg.Buttons {
		label := b.BulkLabel(i)
		if b.TrimmedPromptID() == "" {
			problems = append(problems, fmt.Sprintf("%s: missing prompt_id", label))
		}
		if len(b.FieldMap) == 0 {
			problems = append(problems, fmt.Sprintf("%s: empty field_map (bulk runs skip every note)", label))
		}
	}
	if len(problems) > 0 {
		return ValidationResult{
			Message: fmt.Sprintf("%d of %d buttons need attention", countButtons(problems), len(v.cfg.Buttons)),
			Error:   fmt.Errorf("%s", strings.Join(problems, "; ")),
		}
	}
	return ValidationResult{Valid: true, Message: fmt.Sprintf("%d buttons ready", len(v.cfg.Buttons))}
}

// countButtons counts distinct button labels in "label: problem" entries.
func countButtons(problems []string) int {
	seen := make(map[string]bool)
	for _, p := range problems {
		label, _, _ := strings.Cut(p, ":")
		seen[label] = true
	}
	return len(seen)
}

// ValidateAll runs every offline check.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckConfigFile(),
		v.CheckEndpoint(),
		v.CheckAPIKey(),
		v.CheckButtons(),
	}
}

// ValidateRequired returns the first failing check that would stop every
// button from running, or nil.
func (v *ConfigValidator) ValidateRequired() error {
	if r := v.CheckEndpoint(); !r.Valid {
		return r.Error
	}
	if r := v.CheckAPIKey(); !r.Valid {
		return r.Error
	}
	return nil
}
