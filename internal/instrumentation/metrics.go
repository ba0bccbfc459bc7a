package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus     = "status"
	attrStatusCode = "status_code"
	attrOperation  = "operation"
	attrResult     = "result"
	attrTool       = "tool"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics, or one built while instrumentation is disabled, records nothing.
type Metrics struct {
	// Zoom API metrics
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal    metric.Int64Counter
	cacheLookupsTotal metric.Int64Counter

	// Report metrics
	meetingsSummarizedTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.apiRequestsTotal, err = meter.Int64Counter(
		"zoom_api_requests_total",
		metric.WithDescription("Total number of Zoom API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zoom_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"zoom_api_request_duration_seconds",
		metric.WithDescription("Zoom API request duration in seconds, retries included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zoom_api_request_duration_seconds histogram: %w", err)
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth token exchanges"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.cacheLookupsTotal, err = meter.Int64Counter(
		"token_cache_lookups_total",
		metric.WithDescription("Total number of token cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_cache_lookups_total counter: %w", err)
	}

	m.meetingsSummarizedTotal, err = meter.Int64Counter(
		"meetings_summarized_total",
		metric.WithDescription("Total number of meetings summarized by outcome"),
		metric.WithUnit("{meeting}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meetings_summarized_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAPIRequest records one Zoom API request.
//
// Parameters:
//   - operation: logical operation (list_meetings, list_participants, ...)
//   - statusCode: final HTTP status, 0 when no response was received
//   - duration: time taken for the request including transport retries
func (m *Metrics) RecordAPIRequest(ctx context.Context, operation string, statusCode int, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return
	}

	status := StatusSuccess
	if statusCode < 200 || statusCode >= 300 {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
		attribute.String(attrStatusCode, strconv.Itoa(statusCode)),
	}

	m.apiRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records a token exchange with result "success" or "failure".
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordCacheLookup records a token cache lookup with result "hit" or "miss".
func (m *Metrics) RecordCacheLookup(ctx context.Context, result string) {
	if m == nil || m.cacheLookupsTotal == nil {
		return
	}
	m.cacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordMeetingSummarized records one summarized meeting with its outcome.
func (m *Metrics) RecordMeetingSummarized(ctx context.Context, outcome string) {
	if m == nil || m.meetingsSummarizedTotal == nil {
		return
	}
	m.meetingsSummarizedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, outcome)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
