package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearConfigEnv blanks every variable LoadConfig consults.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CARDUPDATER_DEBUG", "OPENAI_ANKI_API_KEY", "OPENAI_API_KEY",
		"OPENAI_RESPONSES_URL", "AI_TIMEOUT", "PROMPT_KEY", "PROMPT_KEY_FALLBACK",
		"REQUESTS_PER_MINUTE", "CARDUPDATER_DB", "CARDUPDATER_LOG_FILE",
		"CARDUPDATER_LOG_LEVEL", "DEV_MODE",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_JSONKeepsFieldMapOrder(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, "config.json", `{
		"debug": true,
		"openai_anki_api_key": "sk-anki",
		"openai_api_key": "sk-generic",
		"buttons": [{
			"name": "Explain",
			"prompt": "Explain {{Front}}",
			"prompt_id": "pmpt_1",
			"prompt_version": "3",
			"field_map": {"zeta": "Back", "alpha": "Extra", "mid": "Notes"}
		}]
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.APIKey != "sk-anki" {
		t.Errorf("APIKey = %q, want sk-anki", cfg.APIKey)
	}
	if cfg.SourcePath != path {
		t.Errorf("SourcePath = %q, want %q", cfg.SourcePath, path)
	}
	if len(cfg.Buttons) != 1 {
		t.Fatalf("len(Buttons) = %d, want 1", len(cfg.Buttons))
	}

	want := []FieldMapping{{"zeta", "Back"}, {"alpha", "Extra"}, {"mid", "Notes"}}
	got := cfg.Buttons[0].FieldMap
	if len(got) != len(want) {
		t.Fatalf("FieldMap = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FieldMap[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, "config.yaml", `
openai_api_key: sk-yaml
timeout_seconds: 15
requests_per_minute: 30
buttons:
  - name: Translate
    prompt_id: pmpt_2
    model: gpt-4.1-mini
    field_map:
      translation: Back
      reading: Reading
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.APIKey != "sk-yaml" {
		t.Errorf("APIKey = %q, want sk-yaml", cfg.APIKey)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
	}
	if cfg.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %v, want 30", cfg.RequestsPerMinute)
	}
	fields := cfg.Buttons[0].FieldMap.NoteFields()
	if len(fields) != 2 || fields[0] != "Back" || fields[1] != "Reading" {
		t.Errorf("NoteFields() = %v, want [Back Reading]", fields)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.SourcePath != "" {
		t.Errorf("SourcePath = %q, want empty", cfg.SourcePath)
	}
	if cfg.Endpoint != DefaultResponsesURL {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, DefaultResponsesURL)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout)
	}
	if cfg.PromptKey != "id" {
		t.Errorf("PromptKey = %q, want id", cfg.PromptKey)
	}
	if cfg.HasAPIKey() {
		t.Error("HasAPIKey() = true with no key configured")
	}
}

func TestLoadConfig_APIKeyPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{
			name:    "anki key wins over generic key",
			content: `{"openai_anki_api_key": "a", "openai_api_key": "b"}`,
			want:    "a",
		},
		{
			name:    "blank anki key falls through",
			content: `{"openai_anki_api_key": "  ", "openai_api_key": "b"}`,
			want:    "b",
		},
		{
			name:    "config beats environment",
			content: `{"openai_api_key": "b"}`,
			env:     map[string]string{"OPENAI_ANKI_API_KEY": "env-a"},
			want:    "b",
		},
		{
			name:    "anki env var before generic env var",
			content: `{}`,
			env:     map[string]string{"OPENAI_ANKI_API_KEY": "env-a", "OPENAI_API_KEY": "env-b"},
			want:    "env-a",
		},
		{
			name:    "generic env var last",
			content: `{}`,
			env:     map[string]string{"OPENAI_API_KEY": "env-b"},
			want:    "env-b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig(writeConfig(t, "config.json", tt.content))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.APIKey != tt.want {
				t.Errorf("APIKey = %q, want %q", cfg.APIKey, tt.want)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("OPENAI_RESPONSES_URL", "http://localhost:9999/v1/responses")
	t.Setenv("AI_TIMEOUT", "5")
	t.Setenv("PROMPT_KEY", "prompt_id")
	t.Setenv("PROMPT_KEY_FALLBACK", "yes")
	t.Setenv("CARDUPDATER_DEBUG", "1")

	cfg, err := LoadConfig(writeConfig(t, "config.json", `{"endpoint": "http://ignored", "debug": false}`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Endpoint != "http://localhost:9999/v1/responses" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.PromptKey != "prompt_id" || !cfg.PromptKeyFallback {
		t.Errorf("PromptKey = %q fallback = %v", cfg.PromptKey, cfg.PromptKeyFallback)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true from CARDUPDATER_DEBUG")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{
			name:     "malformed json",
			file:     "config.json",
			content:  `{"buttons": [`,
			wantCode: ErrCodeInvalidConfigFile,
		},
		{
			name:     "duplicate field map key",
			file:     "config.json",
			content:  `{"buttons": [{"prompt_id": "p", "field_map": {"a": "Back", "a": "Front"}}]}`,
			wantCode: ErrCodeInvalidConfigFile,
		},
		{
			name:     "nested field map value",
			file:     "config.yaml",
			content:  "buttons:\n  - prompt_id: p\n    field_map:\n      a: [Back]\n",
			wantCode: ErrCodeInvalidConfigFile,
		},
		{
			name:     "duplicate button labels",
			file:     "config.json",
			content:  `{"buttons": [{"name": "A"}, {"name": " A "}]}`,
			wantCode: ErrCodeInvalidSetting,
		},
		{
			name:     "name clashes with an unnamed button's position",
			file:     "config.json",
			content:  `{"buttons": [{}, {"name": "button 1"}]}`,
			wantCode: ErrCodeInvalidSetting,
		},
		{
			name:     "unsupported prompt key",
			file:     "config.json",
			content:  `{"prompt_key": "name"}`,
			wantCode: ErrCodeInvalidSetting,
		},
		{
			name:     "negative rate",
			file:     "config.json",
			content:  `{"requests_per_minute": -1}`,
			wantCode: ErrCodeInvalidSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if code := GetErrorCode(err); code != tt.wantCode {
				t.Errorf("GetErrorCode() = %q, want %q (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestButtonConfig_Defaults(t *testing.T) {
	tests := []struct {
		name        string
		button      ButtonConfig
		wantLabel   string
		wantTip     string
		wantVersion string
	}{
		{
			name:        "blank name and tooltip",
			button:      ButtonConfig{Name: "  ", PromptVersion: "latest"},
			wantLabel:   DefaultButtonLabel,
			wantTip:     DefaultButtonLabel,
			wantVersion: "",
		},
		{
			name:        "tooltip falls back to name",
			button:      ButtonConfig{Name: " Explain ", PromptVersion: " 7 "},
			wantLabel:   "Explain",
			wantTip:     "Explain",
			wantVersion: "7",
		},
		{
			name:        "explicit tooltip and mixed-case latest",
			button:      ButtonConfig{Name: "X", Tooltip: "Do X", PromptVersion: "LATEST"},
			wantLabel:   "X",
			wantTip:     "Do X",
			wantVersion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.button.Label(); got != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", got, tt.wantLabel)
			}
			if got := tt.button.Tip(); got != tt.wantTip {
				t.Errorf("Tip() = %q, want %q", got, tt.wantTip)
			}
			if got := tt.button.EffectiveVersion(); got != tt.wantVersion {
				t.Errorf("EffectiveVersion() = %q, want %q", got, tt.wantVersion)
			}
		})
	}
}

func TestConfig_FindButton(t *testing.T) {
	cfg := &Config{Buttons: []ButtonConfig{{Name: "Explain"}, {Name: "Translate"}}}

	b, err := cfg.FindButton("translate")
	if err != nil {
		t.Fatalf("FindButton() error = %v", err)
	}
	if b.Name != "Translate" {
		t.Errorf("FindButton() = %q, want Translate", b.Name)
	}

	_, err = cfg.FindButton("missing")
	if GetErrorCode(err) != ErrCodeUnknownButton {
		t.Errorf("FindButton(missing) code = %q, want %q", GetErrorCode(err), ErrCodeUnknownButton)
	}
}

func TestLoadConfig_UnnamedButtons(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, "config.json", `{"buttons": [
		{"prompt_id": "p1", "field_map": {"a": "Back"}},
		{"name": " ", "prompt_id": "p2", "field_map": {"a": "Back"}}
	]}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Buttons) != 2 {
		t.Fatalf("len(Buttons) = %d, want 2", len(cfg.Buttons))
	}

	tests := []struct {
		name       string
		wantPrompt string
	}{
		{"Button 1", "p1"},
		{"button 2", "p2"},
		{"OpenAI", "p1"},
	}
	for _, tt := range tests {
		b, err := cfg.FindButton(tt.name)
		if err != nil {
			t.Errorf("FindButton(%q) error = %v", tt.name, err)
			continue
		}
		if b.PromptID != tt.wantPrompt {
			t.Errorf("FindButton(%q) = %q, want %q", tt.name, b.PromptID, tt.wantPrompt)
		}
	}
	if _, err := cfg.FindButton("Button 3"); GetErrorCode(err) != ErrCodeUnknownButton {
		t.Errorf("FindButton(Button 3) error = %v, want unknown button", err)
	}
}

func TestButtonConfig_BulkLabel(t *testing.T) {
	tests := []struct {
		button ButtonConfig
		index  int
		want   string
	}{
		{ButtonConfig{Name: "Explain"}, 0, "Explain"},
		{ButtonConfig{Name: " Explain "}, 4, "Explain"},
		{ButtonConfig{}, 0, "Button 1"},
		{ButtonConfig{Name: "  "}, 2, "Button 3"},
	}
	for _, tt := range tests {
		if got := tt.button.BulkLabel(tt.index); got != tt.want {
			t.Errorf("BulkLabel(%d) for %q = %q, want %q", tt.index, tt.button.Name, got, tt.want)
		}
	}
}

func TestConfig_GetHTTPClient(t *testing.T) {
	cfg := &Config{RequestTimeout: 42 * time.Second}
	if got := cfg.GetHTTPClient().Timeout; got != 42*time.Second {
		t.Errorf("GetHTTPClient().Timeout = %v, want 42s", got)
	}
}
