package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultResponsesURL is the Responses API endpoint used when none is configured.
const DefaultResponsesURL = "https://api.openai.com/v1/responses"

// DefaultButtonLabel is shown for a button whose name is blank.
const DefaultButtonLabel = "OpenAI"

// FieldMapping routes one key of the model's JSON result into a note field.
type FieldMapping struct {
	ResponseKey string
	NoteField   string
}

// FieldMap is the ordered response-key to note-field mapping of a button.
// Iteration order is the order keys appear in the config file.
type FieldMap []FieldMapping

// UnmarshalJSON decodes an object while keeping key order.
func (m *FieldMap) UnmarshalJSON(data []byte) error {
	var pairs OrderedPairs
	if err := pairs.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("field_map: %w", err)
	}
	*m = fieldMapFromPairs(pairs)
	return nil
}

// UnmarshalYAML decodes a mapping while keeping key order.
func (m *FieldMap) UnmarshalYAML(node *yaml.Node) error {
	var pairs OrderedPairs
	if err := pairs.UnmarshalYAML(node); err != nil {
		return fmt.Errorf("field_map: %w", err)
	}
	*m = fieldMapFromPairs(pairs)
	return nil
}

func fieldMapFromPairs(pairs OrderedPairs) FieldMap {
	if pairs == nil {
		return nil
	}
	m := make(FieldMap, len(pairs))
	for i, p := range pairs {
		m[i] = FieldMapping{ResponseKey: p.Key, NoteField: p.Value}
	}
	return m
}

// NoteFields returns the destination field names in mapping order.
func (m FieldMap) NoteFields() []string {
	fields := make([]string, len(m))
	for i, fm := range m {
		fields[i] = fm.NoteField
	}
	return fields
}

// ButtonConfig describes one configured update action. Values are read once
// at load time and treated as immutable afterwards.
type ButtonConfig struct {
	Name          string   `json:"name" yaml:"name"`
	Tooltip       string   `json:"tooltip" yaml:"tooltip"`
	Prompt        string   `json:"prompt" yaml:"prompt"`
	PromptID      string   `json:"prompt_id" yaml:"prompt_id"`
	PromptVersion string   `json:"prompt_version" yaml:"prompt_version"`
	Model         string   `json:"model" yaml:"model"`
	FieldMap      FieldMap `json:"field_map" yaml:"field_map"`
}

// Label returns the trimmed display name, or DefaultButtonLabel when blank.
func (b ButtonConfig) Label() string {
	if name := strings.TrimSpace(b.Name); name != "" {
		return name
	}
	return DefaultButtonLabel
}

// BulkLabel returns the label used where all buttons are listed together:
// the trimmed name, or "Button N" (1-based position) when blank.
func (b ButtonConfig) BulkLabel(index int) string {
	if name := strings.TrimSpace(b.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Button %d", index+1)
}

// Tip returns the tooltip, falling back to the label.
func (b ButtonConfig) Tip() string {
	if tip := strings.TrimSpace(b.Tooltip); tip != "" {
		return tip
	}
	return b.Label()
}

// TrimmedPromptID returns the prompt identifier without surrounding whitespace.
func (b ButtonConfig) TrimmedPromptID() string {
	return strings.TrimSpace(b.PromptID)
}

// TrimmedModel returns the model override without surrounding whitespace.
func (b ButtonConfig) TrimmedModel() string {
	return strings.TrimSpace(b.Model)
}

// EffectiveVersion returns the prompt version to send, or "" when the
// button asks for the unversioned ("latest") prompt.
func (b ButtonConfig) EffectiveVersion() string {
	v := strings.TrimSpace(b.PromptVersion)
	if strings.EqualFold(v, "latest") {
		return ""
	}
	return v
}

// fileConfig mirrors the on-disk config document.
type fileConfig struct {
	Debug             bool           `json:"debug" yaml:"debug"`
	AnkiAPIKey        string         `json:"openai_anki_api_key" yaml:"openai_anki_api_key"`
	APIKey            string         `json:"openai_api_key" yaml:"openai_api_key"`
	Endpoint          string         `json:"endpoint" yaml:"endpoint"`
	TimeoutSeconds    int            `json:"timeout_seconds" yaml:"timeout_seconds"`
	PromptKey         string         `json:"prompt_key" yaml:"prompt_key"`
	PromptKeyFallback bool           `json:"prompt_key_fallback" yaml:"prompt_key_fallback"`
	RequestsPerMinute float64        `json:"requests_per_minute" yaml:"requests_per_minute"`
	Buttons           []ButtonConfig `json:"buttons" yaml:"buttons"`
}

// Config holds all configuration values for a run.
type Config struct {
	// Debug enables verbose logging and HTTP error bodies in warnings
	Debug bool

	// APIKey is the resolved bearer token (may be empty; checked per action)
	APIKey string

	// Endpoint is the Responses API URL
	Endpoint string

	// RequestTimeout bounds each HTTP call
	RequestTimeout time.Duration

	// PromptKey is the JSON key used for the prompt identifier ("id" or "prompt_id")
	PromptKey string

	// PromptKeyFallback retries once with the alternate prompt key on a matching 400
	PromptKeyFallback bool

	// RequestsPerMinute paces bulk runs; 0 disables pacing
	RequestsPerMinute float64

	// Buttons are the configured update actions in file order
	Buttons []ButtonConfig

	// Local storage and logging
	DatabasePath string
	LogFilePath  string
	LogLevel     string
	DevMode      bool

	// SourcePath is the config file that was read ("" when none was found)
	SourcePath string
}

// LoadConfig reads the config file at path (JSON or YAML) and applies
// environment overrides. A missing file is not an error: the tool can still
// run `check` or `notes` commands from environment settings alone.
func LoadConfig(path string) (*Config, error) {
	var fc fileConfig
	source := ""

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decodeConfig(path, data, &fc); err != nil {
				return nil, ErrInvalidConfigFile(path, err.Error())
			}
			source = path
		case os.IsNotExist(err):
			// fall through to env-only configuration
		default:
			return nil, ErrInvalidConfigFile(path, err.Error())
		}
	}

	cfg := &Config{
		Debug:             ParseBoolEnv("CARDUPDATER_DEBUG", fc.Debug),
		APIKey:            FirstNonBlank(fc.AnkiAPIKey, fc.APIKey, os.Getenv("OPENAI_ANKI_API_KEY"), os.Getenv("OPENAI_API_KEY")),
		Endpoint:          GetEnvOrDefault("OPENAI_RESPONSES_URL", FirstNonBlank(fc.Endpoint, DefaultResponsesURL)),
		RequestTimeout:    ParseDurationEnv("AI_TIMEOUT", positiveOr(fc.TimeoutSeconds, 60)),
		PromptKey:         GetEnvOrDefault("PROMPT_KEY", FirstNonBlank(fc.PromptKey, "id")),
		PromptKeyFallback: ParseBoolEnv("PROMPT_KEY_FALLBACK", fc.PromptKeyFallback),
		RequestsPerMinute: ParseFloat64Env("REQUESTS_PER_MINUTE", fc.RequestsPerMinute),
		Buttons:           fc.Buttons,
		DatabasePath:      GetEnvOrDefault("CARDUPDATER_DB", DataFilePath("cardupdater.db")),
		LogFilePath:       GetEnvOrDefault("CARDUPDATER_LOG_FILE", DataFilePath("cardupdater.log")),
		LogLevel:          os.Getenv("CARDUPDATER_LOG_LEVEL"),
		DevMode:           ParseBoolEnv("DEV_MODE", false),
		SourcePath:        source,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeConfig(path string, data []byte, fc *fileConfig) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(data, fc)
	}
	return yaml.Unmarshal(data, fc)
}

// Validate checks structural constraints that would make buttons ambiguous.
// Missing API keys and prompt ids are not checked here; they are reported
// when the affected button is used.
func (c *Config) Validate() error {
	if c.PromptKey != "id" && c.PromptKey != "prompt_id" {
		return ErrInvalidSetting("prompt_key", fmt.Sprintf("%q is not one of id, prompt_id", c.PromptKey))
	}
	if c.RequestsPerMinute < 0 {
		return ErrInvalidSetting("requests_per_minute", "must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidSetting("timeout_seconds", "must be positive")
	}

	// Unnamed buttons are told apart by position, so only the listed labels
	// have to be unique.
	seen := make(map[string]bool)
	for i, b := range c.Buttons {
		label := b.BulkLabel(i)
		key := strings.ToLower(label)
		if seen[key] {
			return ErrInvalidSetting(fmt.Sprintf("buttons[%d].name", i), fmt.Sprintf("duplicate button %q", label))
		}
		seen[key] = true
	}
	return nil
}

// HasAPIKey reports whether an API key was resolved from any source.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// FindButton returns the button whose listed label matches name
// (case-insensitive). An unnamed button answers to "Button N"; the first
// unnamed one also answers to DefaultButtonLabel.
func (c *Config) FindButton(name string) (ButtonConfig, error) {
	name = strings.TrimSpace(name)
	for i, b := range c.Buttons {
		if strings.EqualFold(b.BulkLabel(i), name) {
			return b, nil
		}
	}
	for _, b := range c.Buttons {
		if strings.EqualFold(b.Label(), name) {
			return b, nil
		}
	}
	return ButtonConfig{}, ErrUnknownButton(name)
}

// GetHTTPClient returns an HTTP client bounded by the configured request timeout.
func (c *Config) GetHTTPClient() *http.Client {
	return &http.Client{Timeout: c.RequestTimeout}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
