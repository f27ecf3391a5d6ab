package responses

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidEnvelope is returned when a 2xx body is not a JSON envelope.
var ErrInvalidEnvelope = errors.New("responses: invalid response envelope")

// HTTPError is a non-2xx reply. Body is kept verbatim for diagnostics.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("responses: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError is a failure to get any reply: DNS, connect, TLS, timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("responses: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsHTTPError returns the *HTTPError in err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsPromptKeyRejected reports whether err is a 400 whose body complains about
// the prompt key that was sent, e.g. "Unknown parameter: 'prompt.prompt_id'".
// This is string matching against a third-party error format and can miss.
func IsPromptKeyRejected(err error, key string) bool {
	httpErr, ok := AsHTTPError(err)
	if !ok || httpErr.StatusCode != http.StatusBadRequest {
		return false
	}
	return strings.Contains(httpErr.Body, "prompt."+key) ||
		strings.Contains(httpErr.Body, "'"+key+"'")
}

// AlternatePromptKey returns the other accepted prompt key.
func AlternatePromptKey(key string) string {
	if key == "prompt_id" {
		return "id"
	}
	return "prompt_id"
}
