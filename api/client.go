package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// apiRoot is the versioned prefix every backend route lives under.
const apiRoot = "/api/v1/"

const defaultTimeout = 15 * time.Second

// Client is the single point through which the storefront reaches the
// backend. No other component issues raw network calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTracing wraps the transport so outbound requests carry trace
// context and produce client spans.
func WithTracing() Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = otelhttp.NewTransport(base)
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root, without the API prefix.
func (c *Client) BaseURL() string { return c.baseURL }

// RawBody carries a pre-encoded request body (multipart uploads). The
// caller owns the content type; Call sends it untouched.
type RawBody struct {
	ContentType string
	Data        io.Reader
}

type callOpt func(*http.Request)

func withHeader(key, value string) callOpt {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Call performs one request against the backend. The bearer header is
// attached only when token is non-empty. body may be nil, a RawBody, or
// any JSON-encodable value. On success the parsed body is returned, an
// empty response decoding as {}.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any, token string, opts ...callOpt) (json.RawMessage, error) {
	var reader io.Reader
	contentType := "application/json"
	switch b := body.(type) {
	case nil:
	case RawBody:
		reader = b.Data
		contentType = b.ContentType
	case *RawBody:
		reader = b.Data
		contentType = b.ContentType
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := c.baseURL + apiRoot + strings.TrimPrefix(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnError{Err: err}
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(text)}
	}

	if len(bytes.TrimSpace(text)) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(text), nil
}

// errorMessage extracts the most specific explanation a failure body
// offers: the "error" field, then "message", then the raw text, then a
// generic fallback.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "API request failed"
}
