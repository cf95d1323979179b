// Package whitespace is the client for the analytics service that computes
// whitespace graphs and assignee signals.
package whitespace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/whitespace/internal/graph"
)

const (
	// DefaultBaseURL is where a locally running service listens.
	DefaultBaseURL = "http://localhost:8000"

	// GraphPath is the graph endpoint relative to the base URL.
	GraphPath = "/whitespace/graph"

	// DefaultTimeout bounds one analysis; the service clusters and lays out
	// server-side, which can take a while.
	DefaultTimeout = 2 * time.Minute

	// DefaultRateLimit is requests per second.
	DefaultRateLimit = 2.0

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 * 1024
)

// Client is a rate-limited HTTP client for the analytics service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	token      string
	baseURL    string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets the service URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithRateLimit sets the request rate; values <= 0 keep the default.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    DefaultBaseURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GraphResult is a decoded payload plus the bytes it was decoded from.
type GraphResult struct {
	Payload *graph.Payload
	Raw     json.RawMessage
}

// Graph runs one analysis.
func (c *Client) Graph(ctx context.Context, req GraphRequest) (*GraphResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GraphPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	p, err := graph.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.logger.Debug("analysis complete",
		"nodes", len(p.Graph.Nodes),
		"edges", len(p.Graph.Edges),
		"assignees", len(p.Assignees),
		"elapsed", time.Since(start))
	return &GraphResult{Payload: p, Raw: raw}, nil
}

// checkHTTPErrors maps a non-success response to an error.
func checkHTTPErrors(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: errorDetail(body, resp.StatusCode)}
	}
	return nil
}

// errorDetail extracts the "detail" field the service puts in error bodies.
func errorDetail(body []byte, status int) string {
	var wire struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &wire); err == nil && len(wire.Detail) > 0 {
		var s string
		if err := json.Unmarshal(wire.Detail, &s); err == nil {
			return s
		}
		return string(wire.Detail)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
