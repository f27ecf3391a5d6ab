// Package responses is a minimal client for the OpenAI Responses endpoint
// used with stored prompts.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"cardupdater/core"
	"cardupdater/logging"
)

// Common errors for client construction.
var (
	ErrNoEndpoint       = errors.New("responses: endpoint is empty")
	ErrInvalidPromptKey = errors.New("responses: prompt key must be id or prompt_id")
)

// maxErrorBody caps how much of an error body is kept.
const maxErrorBody = 64 << 10

// ClientConfig holds connection settings.
type ClientConfig struct {
	Endpoint string
	APIKey   string

	// PromptKey is the key the prompt identifier is sent under
	PromptKey string

	// PromptKeyFallback retries once with the other key when the server
	// rejects the first one with a 400 naming it
	PromptKeyFallback bool

	HTTPClient *http.Client
}

// ConfigFromCore maps application config onto client settings.
func ConfigFromCore(cfg *core.Config) ClientConfig {
	return ClientConfig{
		Endpoint:          cfg.Endpoint,
		APIKey:            cfg.APIKey,
		PromptKey:         cfg.PromptKey,
		PromptKeyFallback: cfg.PromptKeyFallback,
		HTTPClient:        cfg.GetHTTPClient(),
	}
}

// Client posts requests to one Responses endpoint.
//
// Thread-Safety:
//   - Client is safe for concurrent use
//   - after a successful key fallback the alternate key is used for later calls
type Client struct {
	endpoint   string
	apiKey     string
	fallback   bool
	httpClient *http.Client
	logger     *logging.Logger

	mu        sync.Mutex
	promptKey string
}

// NewClient validates cfg and returns a Client. A nil logger discards logs.
func NewClient(cfg ClientConfig, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrNoEndpoint
	}
	key := cfg.PromptKey
	if key == "" {
		key = "id"
	}
	if key != "id" && key != "prompt_id" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPromptKey, key)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		fallback:   cfg.PromptKeyFallback,
		httpClient: httpClient,
		logger:     logger.Named("responses"),
		promptKey:  key,
	}, nil
}

// PromptKey returns the key currently used for the prompt identifier.
func (c *Client) PromptKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.promptKey
}

// Create sends req and returns the decoded envelope.
//
// Errors:
//   - *HTTPError for non-2xx replies
//   - *TransportError when no reply arrived
//   - ErrInvalidEnvelope when a 2xx body cannot be decoded
func (c *Client) Create(ctx context.Context, req Request) (*Envelope, error) {
	key := c.PromptKey()
	attempts := uint(1)
	if c.fallback {
		attempts = 2
	}

	var envelope *Envelope
	err := retry.Do(
		func() error {
			env, err := c.post(ctx, req, key)
			if err != nil {
				return err
			}
			envelope = env
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return IsPromptKeyRejected(err, key)
		}),
		retry.OnRetry(func(n uint, err error) {
			next := AlternatePromptKey(key)
			c.logger.Warn("Prompt key rejected, retrying with alternate key",
				zap.String("rejected", key),
				zap.String("retry_with", next),
			)
			key = next
		}),
	)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.promptKey = key
	c.mu.Unlock()
	return envelope, nil
}

func (c *Client) post(ctx context.Context, req Request, promptKey string) (*Envelope, error) {
	data, err := json.Marshal(newRequestBody(req, promptKey))
	if err != nil {
		return nil, fmt.Errorf("responses: marshal request: %w", err)
	}
	c.logger.Debug("OpenAI request payload", zap.String("payload", string(data)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("responses: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("User-Agent", core.UserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	c.logger.Debug("OpenAI response body",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("body", string(body)),
	)

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	return &envelope, nil
}
