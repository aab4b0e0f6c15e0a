// Package ads is a small client for the Google Ads REST API covering keyword
// planning, geo target suggestions and GAQL reporting queries.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"giga/internal/config"
	"giga/internal/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultEndpoint is the versioned REST root of the Google Ads API.
	DefaultEndpoint = "https://googleads.googleapis.com/v22"
	// Scope is the OAuth scope required by the Google Ads API.
	Scope = "https://www.googleapis.com/auth/adwords"
	// DefaultRequestDelay keeps keyword planning calls under 1 QPS.
	DefaultRequestDelay = time.Second
)

// Client talks to the Google Ads REST API. Requests are issued
// sequentially; a Client must not be shared between goroutines.
type Client struct {
	endpoint   string
	provider   config.Provider
	tokens     oauth2.TokenSource
	httpClient *http.Client
	delay      time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint overrides the API root, e.g. for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the OAuth token source for the bearer token.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRequestDelay sets the fixed delay before each rate-limited request.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// WithSleeper replaces the delay implementation.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithClock sets the clock used to compute historical metric ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Google Ads client. Without WithTokenSource the
// application default credentials are used.
func NewClient(ctx context.Context, provider config.Provider, opts ...Option) (*Client, error) {
	if provider.DeveloperToken() == "" {
		return nil, ErrMissingDeveloperToken
	}
	c := &Client{
		endpoint:   DefaultEndpoint,
		provider:   provider,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		delay:      DefaultRequestDelay,
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens == nil {
		ts, err := google.DefaultTokenSource(ctx, Scope)
		if err != nil {
			return nil, fmt.Errorf("failed to find google credentials: %w", err)
		}
		c.tokens = ts
	}
	return c, nil
}

// CustomerID is the account the client issues planning requests for.
func (c *Client) CustomerID() string {
	return config.NormalizeCustomerID(c.provider.CustomerID())
}

// wait blocks for the fixed rate-limit delay.
func (c *Client) wait(ctx context.Context) error {
	return c.sleep(ctx, c.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// post sends a JSON request to service (relative to the endpoint) and
// decodes the response into out.
func (c *Client) post(ctx context.Context, service string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", service, err)
	}
	logger.Debug("Google Ads request", "service", service, "payload", string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+service, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", service, err)
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to get google ads access token: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("developer-token", c.provider.DeveloperToken())
	if login := config.NormalizeCustomerID(c.provider.LoginCustomerID()); login != "" {
		req.Header.Set("login-customer-id", login)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s request: %w", service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", service, err)
	}

	var envelope struct {
		Error  json.RawMessage `json:"error"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Error("Google Ads response is not valid JSON", err, "service", service, "body", string(raw))
		return &APIError{Service: service, StatusCode: resp.StatusCode, Message: "response is not valid JSON", Body: string(raw)}
	}
	if apiErr := envelopeError(envelope.Error, envelope.Errors); apiErr != "" || resp.StatusCode/100 != 2 {
		logger.Error("Google Ads request failed", nil, "service", service, "status", resp.StatusCode, "body", string(raw))
		if apiErr == "" {
			apiErr = http.StatusText(resp.StatusCode)
		}
		return &APIError{Service: service, StatusCode: resp.StatusCode, Message: apiErr, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}

// envelopeError extracts a readable message from an error or errors field.
func envelopeError(single, multiple json.RawMessage) string {
	for _, raw := range []json.RawMessage{single, multiple} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var withMessage struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &withMessage) == nil && withMessage.Message != "" {
			return withMessage.Message
		}
		return string(raw)
	}
	return ""
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	var chunks [][]T
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size:size])
	}
	if len(items) > 0 {
		chunks = append(chunks, items)
	}
	return chunks
}
