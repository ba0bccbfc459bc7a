// Package instrumentation provides OpenTelemetry metrics and tracing for zoomreport.
//
// # Metrics
//
// Zoom API:
//   - zoom_api_requests_total: Counter of API requests by operation, status and status code
//   - zoom_api_request_duration_seconds: Histogram of API request durations (retries included)
//
// Authentication:
//   - oauth_auth_total: Counter of account-credentials token exchanges by result
//   - token_cache_lookups_total: Counter of token cache lookups by hit/miss
//
// Report:
//   - meetings_summarized_total: Counter of summarized meetings by outcome
//
// MCP:
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// # Tracing
//
// Client spans are named zoom.<operation> (zoom.list_meetings, zoom.list_participants, ...);
// MCP tool calls get a server span named tool.<name>.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: zoomreport)
package instrumentation
