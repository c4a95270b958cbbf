package entry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"
)

// Reference identifies one field of one entry in one space: the unit the
// service validates.
type Reference struct {
	// Space is the content space identifier.
	Space string `json:"space" yaml:"space"`

	// Entry is the identifier of the entry that owns the field.
	Entry string `json:"entry" yaml:"entry"`

	// Field is the name of the field holding the linked entries.
	Field string `json:"field" yaml:"field"`
}

// String renders the reference for logs.
func (r Reference) String() string {
	return fmt.Sprintf("%s/%s.%s", r.Space, r.Entry, r.Field)
}

// ClientConfig contains configuration for the content API client.
type ClientConfig struct {
	// BaseURL is the content API base URL.
	BaseURL string `yaml:"base_url"`

	// Token is the bearer token for the content API. Optional.
	Token string `yaml:"token"`

	// Timeout is the per-request timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after a failed attempt.
	// Only transient failures (network errors, 5xx) are retried.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns is the connection pool size.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host connection pool size.
	// Default: 5
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:             10 * time.Second,
		MaxRetries:          2,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
}

// SourceError is returned when the content API cannot deliver the linked
// entries for a reference.
type SourceError struct {
	// Reference is the field reference the fetch was for.
	Reference Reference

	// StatusCode is the HTTP status, if a response was received.
	StatusCode int

	// Message describes the failure.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("entry source error for %s (status %d): %s", e.Reference, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("entry source error for %s: %s", e.Reference, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Client fetches linked entries from the content API.
type Client struct {
	config *ClientConfig
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a content API client with connection pooling.
func NewClient(config *ClientConfig, logger *slog.Logger) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("entry client: base URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultClientConfig()
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaults.MaxIdleConns
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = defaults.MaxIdleConnsPerHost
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaults.IdleConnTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: logger.With("component", "entry.client"),
	}, nil
}

// linksResponse is the content API's linked-entry list payload.
type linksResponse struct {
	Items []Entry `json:"items"`
}

// FetchLinks returns the current linked-entry list for a field reference.
// Transient failures are retried with exponential backoff; the result is
// either the complete list or an error, never a partial list.
func (c *Client) FetchLinks(ctx context.Context, ref Reference) ([]Entry, error) {
	endpoint := fmt.Sprintf("%s/spaces/%s/entries/%s/fields/%s/links",
		c.config.BaseURL,
		url.PathEscape(ref.Space),
		url.PathEscape(ref.Entry),
		url.PathEscape(ref.Field),
	)

	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.logger.Debug("retrying entry fetch",
				"reference", ref.String(),
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		items, retryable, err := c.fetchOnce(ctx, ref, endpoint)
		if err == nil {
			return items, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.Warn("entry fetch failed, will retry",
			"reference", ref.String(),
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, ref Reference, endpoint string) ([]Entry, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, &SourceError{Reference: ref, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, &SourceError{Reference: ref, Message: "request cancelled", Cause: ctx.Err()}
		}
		return nil, true, &SourceError{Reference: ref, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &SourceError{Reference: ref, Message: "failed to read response", Cause: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var payload linksResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, false, &SourceError{Reference: ref, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
		}
		return payload.Items, false, nil

	case resp.StatusCode >= 500:
		return nil, true, &SourceError{Reference: ref, StatusCode: resp.StatusCode, Message: string(body)}

	default:
		// Client errors (404, 401) will not improve on retry.
		return nil, false, &SourceError{Reference: ref, StatusCode: resp.StatusCode, Message: string(body)}
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
