package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"cardupdater/core"
)

// BaseURLFromEndpoint derives the OpenAI API base URL (".../v1") from the
// configured Responses endpoint, so `check` talks to the same server that
// updates go to.
//
// Example:
//
//	handlers.BaseURLFromEndpoint("https://api.openai.com/v1/responses")
//	// "https://api.openai.com/v1"
func BaseURLFromEndpoint(endpoint string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if trimmed == "" {
		return ""
	}
	return strings.TrimSuffix(trimmed, "/responses")
}

// CreateClient returns a go-openai client for the configured server.
func CreateClient(cfg *core.Config, httpClient *http.Client) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if base := BaseURLFromEndpoint(cfg.Endpoint); base != "" {
		clientConfig.BaseURL = base
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(clientConfig)
}

// KeyCheck is the outcome of ValidateAPIKey.
type KeyCheck struct {
	ModelCount int
	// HasModel reports whether each button's model override is served
	HasModel map[string]bool
}

// ValidateAPIKey lists models with the configured key. A rejected key comes
// back as the API error; an unreachable server as a wrapped transport error.
func ValidateAPIKey(ctx context.Context, client *openai.Client, buttons []core.ButtonConfig) (*KeyCheck, error) {
	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	served := make(map[string]bool, len(list.Models))
	for _, m := range list.Models {
		served[m.ID] = true
	}

	check := &KeyCheck{ModelCount: len(list.Models), HasModel: make(map[string]bool)}
	for _, b := range buttons {
		if model := b.TrimmedModel(); model != "" {
			check.HasModel[model] = served[model]
		}
	}
	return check, nil
}
