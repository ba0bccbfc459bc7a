// Package server wires the long-lived pieces of zoomreport together.
//
// ServerContext owns the configured Zoom client, the authenticator with its
// token cache, and the instrumentation handles. Both the one-shot summary
// command and the MCP server build one and ask it for a Reporter.
//
// MetricsServer exposes Prometheus metrics and health probes on a dedicated
// port while the MCP server runs over stdio.
package server
