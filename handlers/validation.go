package handlers

import "cardupdater/core"

// ValidateButton checks the preconditions shared by single and bulk runs:
// an API key and a prompt identifier. It returns the *core.ConfigError to
// show the user, or nil.
//
// Example:
//
//	if err := handlers.ValidateButton(cfg, button); err != nil {
//	    reporter.Warning(err.Error())
//	    return
//	}
func ValidateButton(cfg *core.Config, button core.ButtonConfig) error {
	if !cfg.HasAPIKey() {
		return core.ErrMissingAPIKey()
	}
	if button.TrimmedPromptID() == "" {
		return core.ErrMissingPromptID(button.Label())
	}
	return nil
}

// PreconditionMessage returns the text shown for a failed precondition.
// Only the missing-key message includes how to fix it.
func PreconditionMessage(err error) string {
	if cfgErr, ok := core.IsConfigError(err); ok {
		switch cfgErr.Code {
		case core.ErrCodeMissingAPIKey:
			return cfgErr.Error()
		default:
			return cfgErr.Message
		}
	}
	return err.Error()
}
