package zendesk

import (
	"errors"
	"fmt"
)

// Retry-exhaustion errors. Each marks a transient failure class that was
// retried up to the attempt budget before being surfaced.
var (
	ErrNetworkExhausted     = errors.New("network error contacting Zendesk, retries exhausted")
	ErrRateLimitExhausted   = errors.New("rate limited by Zendesk too many times (429)")
	ErrServerErrorExhausted = errors.New("Zendesk server errors, retries exhausted")
)

// Non-retryable remote errors.
var (
	ErrAuthenticationFailed = errors.New("authentication/authorization failed; check ZENDESK_SUBDOMAIN / ZENDESK_EMAIL / ZENDESK_API_TOKEN")
	ErrMalformedResponse    = errors.New("invalid JSON received from Zendesk")
)

// HTTPError is any other non-2xx response. It fails immediately, carrying the
// status and whatever body the server returned.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error from Zendesk: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error from Zendesk: %d: %s", e.StatusCode, e.Body)
}
