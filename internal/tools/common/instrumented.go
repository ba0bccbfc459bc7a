package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
)

// ToolHandler is the signature mcp-go expects for tool handlers. It is an alias
// so wrapped handlers can be passed straight to AddTool.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Observer supplies the metrics and logger a wrapped handler reports to.
// *server.ServerContext implements it.
type Observer interface {
	Metrics() *instrumentation.Metrics
	Logger() *slog.Logger
}

// InstrumentedToolHandler wraps a tool handler with a span, invocation metrics
// and a completion log line. A result with IsError set counts as a failure.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, obs Observer, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		logger := logging.WithTool(obs.Logger(), toolName)
		start := time.Now()

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
			logger.Error("tool failed", logging.Err(err), logging.Status(status), "duration", duration)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			logger.Warn("tool returned an error result", logging.Status(status), "duration", duration)
		default:
			instrumentation.SetSpanSuccess(span)
			logger.Info("tool completed", logging.Status(status), "duration", duration)
		}

		obs.Metrics().RecordToolInvocation(ctx, toolName, status, duration)
		return result, err
	}
}
