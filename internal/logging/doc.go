// Package logging provides structured logging utilities for zoomreport.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Timestamped diagnostic log files (zoom_summary_YYYYMMDD_HHMMSS.log)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface, also accepted by go-retryablehttp as a leveled logger
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "zoom.list_meetings")
//	logger.Info("listing meetings",
//	    logging.Status("success"))
//
// # Security Considerations
//
// Access tokens are never logged directly; use SanitizeToken.
package logging
