package zoom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
)

const (
	// DefaultBaseURL is the root of Zoom's v2 REST API.
	DefaultBaseURL = "https://api.zoom.us/v2"

	// MaxPageSize is the largest page the list endpoints accept.
	MaxPageSize = 300

	// maxErrorBody bounds response bodies copied into errors and logs.
	maxErrorBody = 1024
)

// Client talks to the Zoom REST API. All requests carry a caller-supplied bearer
// token; Client itself holds no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	pageSize   int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithPageSize sets the requested page size; it is capped at MaxPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) {
		c.pageSize = n
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		pageSize: MaxPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(DefaultRetryPolicy(), DefaultTimeout, logging.NewSlogAdapter(c.logger))
	}
	if c.pageSize <= 0 || c.pageSize > MaxPageSize {
		c.pageSize = MaxPageSize
	}
	return c
}

// get issues an authenticated GET and returns the status code and body. A non-nil
// error means no usable response was received.
func (c *Client) get(ctx context.Context, op, path, token string, params url.Values, attrs ...attribute.KeyValue) (int, []byte, error) {
	ctx, span := instrumentation.StartAPISpan(ctx, op, attrs...)
	defer span.End()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, op, 0, time.Since(start))
		instrumentation.SetSpanError(span, err)
		c.logger.Error("request failed", logging.Operation(op), "path", path, logging.Err(err))
		return 0, nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.RecordAPIRequest(ctx, op, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrStatusCode, resp.StatusCode))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logResponse(op, path, resp, body)
	if !isSuccess(resp.StatusCode) {
		instrumentation.SetSpanError(span, fmt.Errorf("unexpected status %d", resp.StatusCode))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) logResponse(op, path string, resp *http.Response, body []byte) {
	level := slog.LevelDebug
	if !isSuccess(resp.StatusCode) {
		level = slog.LevelWarn
	}
	c.logger.Log(context.Background(), level, "response received",
		logging.Operation(op),
		"path", path,
		logging.Status(resp.Status),
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(body),
		"body", logging.Truncate(string(body), maxErrorBody),
	)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
