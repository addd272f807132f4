// Package api is a typed HTTP client for the Sales Agent backend's
// request/response endpoints. The streaming workflow endpoint lives in the
// workflow package; everything here is plain JSON in, JSON out.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/copperline/console/utils/pkg/retry"
)

// Client is an HTTP client for the Sales Agent API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	retryCfg   retry.Config
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig replaces the retry policy used for idempotent requests.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// New creates a Sales Agent API client.
func New(baseURL string, log *slog.Logger, opts ...Option) *Client {
	// Dial and header timeouts keep connection-level failures fast; the
	// overall timeout is generous because some agent endpoints run for
	// minutes.
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   5 * time.Minute,
		},
		log:      log,
		retryCfg: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "/health", nil, &out); err != nil {
		return HealthResponse{}, fmt.Errorf("health check failed: %w", err)
	}
	return out, nil
}

// apiError is an HTTP-level API failure. It exposes StatusCode() so the retry
// helper can classify it.
type apiError struct {
	statusCode int
	message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.message, e.statusCode)
}

func (e *apiError) StatusCode() int {
	return e.statusCode
}

// get issues a GET and decodes the response into out. GETs are idempotent, so
// transient failures are retried.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(path, query), nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return c.do(req, out)
	})
}

// post issues a POST with a JSON body and decodes the response into out.
// POSTs trigger agent work and are never retried.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(path, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) requestURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(req *http.Request, out any) error {
	c.log.Debug("API request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &apiError{
			statusCode: resp.StatusCode,
			message:    errorMessage(msg, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts a human-readable message from an error response body,
// preferring the backend's {"message": ...} / {"error": ...} fields.
func errorMessage(body []byte, statusCode int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, m := range []string{envelope.Message, envelope.Error, envelope.Detail} {
			if m != "" {
				return m
			}
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return http.StatusText(statusCode)
}
