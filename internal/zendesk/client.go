// Package zendesk implements the ticket retrieval pipeline: a resilient HTTP
// fetch layer, window-driven harvesting with deduplication, and batched
// reference resolution.
package zendesk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 6
	backoffCap         = 30 * time.Second
	defaultRetryAfter  = 2 * time.Second
	maxErrorBodySize   = 64 * 1024
)

// Client issues GET requests against the Zendesk API with bounded retries,
// exponential backoff and rate-limit handling. Sequential use only: backoff
// sleeps block the caller.
type Client struct {
	baseURL     string
	email       string
	token       string
	httpc       *http.Client
	maxAttempts int
	retryAfter  time.Duration
	log         zerolog.Logger

	// sleep is replaceable in tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// NewClient returns a client for the given tenant. email/token authenticate
// via basic auth as "<email>/token".
func NewClient(baseURL, email, token string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		email:       email,
		token:       token,
		httpc:       &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		retryAfter:  defaultRetryAfter,
		log:         log,
		sleep:       time.Sleep,
	}
}

// BaseURL returns the tenant API base URL, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches url, retrying transient failures, and returns the response body.
//
// Policy per failure class:
//   - transport error: exponential backoff min(2^(attempt-1), 30s), then ErrNetworkExhausted
//   - 429: sleep the Retry-After duration (default 2s), then ErrRateLimitExhausted
//   - 5xx: same backoff as transport errors, then ErrServerErrorExhausted
//   - 401/403: ErrAuthenticationFailed immediately, no retry
//   - other non-2xx: *HTTPError immediately
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.SetBasicAuth(c.email+"/token", c.token)
		req.Header.Set("User-Agent", "zexport/1.0")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			if attempt == c.maxAttempts {
				return nil, fmt.Errorf("%w: %v", ErrNetworkExhausted, err)
			}
			delay := backoffDelay(attempt)
			c.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("network error, retrying")
			c.sleep(delay)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt == c.maxAttempts {
				return nil, ErrRateLimitExhausted
			}
			delay := retryAfterDelay(resp.Header.Get("Retry-After"), c.retryAfter)
			c.log.Warn().Int("attempt", attempt).Dur("wait", delay).Msg("rate limited, waiting")
			c.sleep(delay)
			continue

		case resp.StatusCode >= 500:
			resp.Body.Close()
			if attempt == c.maxAttempts {
				return nil, fmt.Errorf("%w: status %d", ErrServerErrorExhausted, resp.StatusCode)
			}
			delay := backoffDelay(attempt)
			c.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Dur("backoff", delay).Msg("server error, retrying")
			c.sleep(delay)
			continue

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			body := readErrorBody(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%w (%d): %s", ErrAuthenticationFailed, resp.StatusCode, body)

		case resp.StatusCode < 200 || resp.StatusCode > 299:
			body := readErrorBody(resp.Body)
			resp.Body.Close()
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return body, nil
	}

	return nil, ErrNetworkExhausted
}

// GetJSON fetches url and unmarshals the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// WhoAmI verifies the credential set by fetching the authenticated user.
func (c *Client) WhoAmI(ctx context.Context) (int64, error) {
	var doc struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := c.GetJSON(ctx, c.baseURL+"/api/v2/users/me.json", &doc); err != nil {
		return 0, err
	}
	if doc.User.ID == 0 {
		return 0, fmt.Errorf("%w: unexpected response from /users/me.json", ErrMalformedResponse)
	}
	return doc.User.ID, nil
}

// Pagination carries the cursor fields common to paginated responses. The
// cursor-based next link is preferred; the legacy next_page field is the
// fallback. An empty Next signals the last page.
type Pagination struct {
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
	NextPage string `json:"next_page"`
}

// Next returns the URL of the next page, or "" when pagination is exhausted.
func (p Pagination) Next() string {
	if p.Links.Next != "" {
		return p.Links.Next
	}
	return p.NextPage
}

// readErrorBody captures a response body for diagnostics, capped so a large
// error page cannot balloon memory. Success bodies are read in full elsewhere.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return string(body)
}

func backoffDelay(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt-1)) * time.Second
	if d > backoffCap {
		return backoffCap
	}
	return d
}

// retryAfterDelay parses a Retry-After header value in seconds. Fractional
// values are floored at one second; unparsable values fall back to def.
func retryAfterDelay(header string, def time.Duration) time.Duration {
	if header == "" {
		return def
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil {
		return def
	}
	if secs < 1 {
		return time.Second
	}
	return time.Duration(int64(secs)) * time.Second
}
