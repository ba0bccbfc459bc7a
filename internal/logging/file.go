package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogFilePrefix is the prefix of every diagnostic log file name.
const LogFilePrefix = "zoom_summary_"

// LogFileName returns the timestamped diagnostic log file name for a run started at t,
// e.g. zoom_summary_20240101_100000.log.
func LogFileName(t time.Time) string {
	return LogFilePrefix + t.Format("20060102_150405") + ".log"
}

// ParseLevel converts a textual level ("debug", "info", "warn", "error") to a slog.Level.
// Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewFileLogger creates the diagnostic log file for a run in dir and returns a text
// logger writing to it. The returned closer must be called when the run ends.
func NewFileLogger(dir string, now time.Time, level slog.Level) (*slog.Logger, io.Closer, string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, LogFileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, path, nil
}

// NewDiscardLogger returns a logger that drops everything. Useful in tests and for
// callers that do not care about diagnostics.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
