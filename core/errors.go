package core

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration problem that stops an action before
// any network call is made. Message is what the user sees; Action tells them
// how to fix it.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingAPIKey     = "MISSING_API_KEY"
	ErrCodeMissingPromptID   = "MISSING_PROMPT_ID"
	ErrCodeNoNoteLoaded      = "NO_NOTE_LOADED"
	ErrCodeUnknownButton     = "UNKNOWN_BUTTON"
	ErrCodeInvalidConfigFile = "INVALID_CONFIG_FILE"
	ErrCodeInvalidSetting    = "INVALID_SETTING"
)

// ErrMissingAPIKey is returned when no API key could be resolved.
func ErrMissingAPIKey() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingAPIKey,
		Message: "OpenAI API key not set.",
		Action:  "Set openai_anki_api_key in config or OPENAI_ANKI_API_KEY.",
	}
}

// ErrMissingPromptID is returned when a button has no prompt identifier.
func ErrMissingPromptID(button string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingPromptID,
		Message: "Button is missing prompt_id.",
		Action:  fmt.Sprintf("Add prompt_id to button %q.", button),
	}
}

// ErrNoNoteLoaded is returned when a single-note action has no target note.
func ErrNoNoteLoaded() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeNoNoteLoaded,
		Message: "No note is loaded in the editor.",
	}
}

// ErrUnknownButton is returned when no configured button matches a name.
func ErrUnknownButton(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownButton,
		Message: fmt.Sprintf("No button named %q is configured.", name),
		Action:  "Run `cardupdater buttons` to list configured buttons.",
	}
}

// ErrInvalidConfigFile is returned when the config file cannot be read or parsed.
func ErrInvalidConfigFile(path, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfigFile,
		Message: fmt.Sprintf("Cannot read config file %s: %s.", path, reason),
		Action:  "Fix the file or point --config at a valid JSON or YAML document.",
	}
}

// ErrInvalidSetting is returned when a config value is out of range.
func ErrInvalidSetting(setting, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidSetting,
		Message: fmt.Sprintf("Invalid setting %s: %s.", setting, reason),
	}
}

// IsConfigError checks if an error is (or wraps) a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
