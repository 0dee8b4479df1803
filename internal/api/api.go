package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"time"

	"ticker-bot/internal/logger"
)

// UserAgent is sent to quote and news hosts that turn away non-browser clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// errBodyLimit caps how much of an error body is kept in a StatusError.
const errBodyLimit = 512

// StatusError is an HTTP response with a status of 400 or above.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err carries an HTTP response with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client talks to the quote, news and LLM endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	verbose    bool
}

type ClientOption func(*Client)

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithBaseURL is prefixed to every request path.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHeader adds a header sent on every request. Per-call headers win.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers[key] = value }
}

// WithLogging logs each round trip at debug level and failures at warn.
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) { c.verbose = enabled }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is a fully read HTTP response with a status below 400.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (r *Response) String() string {
	return string(r.Body)
}

// GET fetches url. The optional map holds headers for this call only.
func (c *Client) GET(ctx context.Context, url string, headers ...map[string]string) (*Response, error) {
	return c.send(ctx, http.MethodGet, url, nil, headers)
}

// POST sends body JSON-encoded.
func (c *Client) POST(ctx context.Context, url string, body any, headers ...map[string]string) (*Response, error) {
	return c.send(ctx, http.MethodPost, url, body, headers)
}

func (c *Client) send(ctx context.Context, method, url string, body any, extra []map[string]string) (*Response, error) {
	url = c.baseURL + url

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", method, err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, url, err)
	}

	headers := maps.Clone(c.headers)
	for _, h := range extra {
		maps.Copy(headers, h)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.warn(ctx, "HTTP round trip failed", "method", method, "url", url, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", url, err)
	}

	if c.verbose {
		logger.Debug(ctx, "HTTP round trip",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"duration", time.Since(start),
			"bytes", len(data))
	}

	if resp.StatusCode >= 400 {
		se := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), errBodyLimit)}
		c.warn(ctx, "HTTP error status", "method", method, "url", url, "status", resp.StatusCode)
		return nil, se
	}

	return &Response{StatusCode: resp.StatusCode, Body: data, Headers: resp.Header}, nil
}

func (c *Client) warn(ctx context.Context, msg string, args ...any) {
	if c.verbose {
		logger.Warn(ctx, msg, args...)
	}
}

// FeedHeaders suits endpoints that answer with text, CSV or script
// payloads rather than strict JSON.
func FeedHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      UserAgent,
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
