package metricsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// APIError is a non-200 answer from the metrics service
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("metrics API error %d: %s", e.StatusCode, e.Body)
}

// Client talks to a remote metrics service
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// Options tune a Client. Zero values mean no timeout and no rate limit.
type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewClient creates a client for baseURL. Requests are authorised with
// tokens from tokenSource; a nil source sends no Authorization header.
func NewClient(baseURL string, tokenSource oauth2.TokenSource, opts Options) *Client {
	httpClient := &http.Client{}
	if tokenSource != nil {
		httpClient = oauth2.NewClient(context.Background(), tokenSource)
	}
	httpClient.Timeout = opts.Timeout

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(opts.RequestsPerMinute),
	}
}

// AnalyzeSession sends a session's samples and returns the computed metrics
func (c *Client) AnalyzeSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/metrics/session", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}

// Health checks that the service is reachable
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// RateLimitStatus returns the requests left in the current window
func (c *Client) RateLimitStatus() int {
	return c.rateLimiter.Status()
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.rateLimiter.UpdateFromHeaders(resp.StatusCode, resp.Header)

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return resp, nil
}
