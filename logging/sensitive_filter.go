package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces sensitive data in log output.
const RedactedPlaceholder = "[REDACTED]"

// sensitivePatterns match secrets that can appear inside free text such as
// error bodies or request dumps.
var sensitivePatterns = []*regexp.Regexp{
	// OpenAI keys: sk-... and sk-proj-...
	regexp.MustCompile(`(sk-[a-zA-Z0-9_-]{20,})`),
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)(api_key\s*[:=]\s*[^\s,;]{8,})`),
	regexp.MustCompile(`(?i)(apikey\s*[:=]\s*[^\s,;]{8,})`),
}

// sensitiveFieldNames mark a field as secret by name, whatever its value.
var sensitiveFieldNames = []string{
	"API_KEY",
	"APIKEY",
	"AUTHORIZATION",
	"SECRET",
	"TOKEN",
	"PASSWORD",
}

// RedactSensitiveData replaces every detected secret in value.
//
// Example:
//
//	RedactSensitiveData("key is sk-abc123def456ghi789jkl012")
//	// "key is [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return result
}

// IsSensitiveField reports whether a field name marks its value as secret.
//
// Example:
//
//	IsSensitiveField("openai_anki_api_key") // true
//	IsSensitiveField("note_id")             // false
func IsSensitiveField(fieldName string) bool {
	upper := strings.ToUpper(fieldName)
	for _, name := range sensitiveFieldNames {
		if strings.Contains(upper, name) {
			return true
		}
	}
	return false
}
