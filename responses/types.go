package responses

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Request is one call to the Responses endpoint with a stored prompt.
// Empty optional fields are left out of the body.
type Request struct {
	PromptID      string
	PromptVersion string // "" or "latest" (any case) sends no version
	Model         string
	Input         string
}

// version returns the version to send, or "".
func (r Request) version() string {
	v := strings.TrimSpace(r.PromptVersion)
	if strings.EqualFold(v, "latest") {
		return ""
	}
	return v
}

type requestBody struct {
	Prompt map[string]string `json:"prompt"`
	Text   textOptions       `json:"text"`
	Input  string            `json:"input,omitempty"`
	Model  string            `json:"model,omitempty"`
}

type textOptions struct {
	Format textFormat `json:"format"`
}

type textFormat struct {
	Type string `json:"type"`
}

// newRequestBody builds the JSON body, putting the prompt identifier under
// promptKey ("id" or "prompt_id").
func newRequestBody(req Request, promptKey string) requestBody {
	prompt := map[string]string{promptKey: strings.TrimSpace(req.PromptID)}
	if v := req.version(); v != "" {
		prompt["version"] = v
	}
	return requestBody{
		Prompt: prompt,
		Text:   textOptions{Format: textFormat{Type: "json_object"}},
		Input:  req.Input,
		Model:  strings.TrimSpace(req.Model),
	}
}

// Envelope is the part of a Responses API reply this tool reads.
type Envelope struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Model  string       `json:"model"`
	Output []OutputItem `json:"output"`
}

// OutputItem is one entry of Envelope.Output. Only "message" items carry text.
type OutputItem struct {
	Type    string         `json:"type"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is "output_text" (Text set) or "output_json" (JSON set).
type ContentBlock struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	JSON json.RawMessage `json:"json,omitempty"`
}

// OutputText extracts the generated text. It walks message items in order;
// the first output_json block with a non-null payload is returned at once as
// compact JSON. Otherwise the non-empty output_text blocks are joined with
// newlines and trimmed.
//
// Example:
//
//	text := envelope.OutputText()
//	payload, err := handlers.CheckResult(text)
func (e *Envelope) OutputText() string {
	var texts []string
	for _, item := range e.Output {
		if item.Type != "message" {
			continue
		}
		for _, block := range item.Content {
			switch block.Type {
			case "output_text":
				if block.Text != "" {
					texts = append(texts, block.Text)
				}
			case "output_json":
				raw := bytes.TrimSpace(block.JSON)
				if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
					continue
				}
				var buf bytes.Buffer
				if err := json.Compact(&buf, raw); err != nil {
					return string(raw)
				}
				return buf.String()
			}
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
