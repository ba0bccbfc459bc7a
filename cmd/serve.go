package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/zoomreport/internal/config"
	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/server"
	"github.com/teemow/zoomreport/internal/tools/zoom_tools"
)

func newServeCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server over stdio to provide Zoom
attendance reports to AI assistants.

Tools:
  - zoom_meeting_summary: attendance report for a date window
  - zoom_get_meeting: details of a single meeting
  - zoom_meeting_attendance: attendance for a list of meeting ids

Diagnostics go to the log file; stdout is reserved for the protocol.

Metrics:
  --metrics-addr :9090 enables instrumentation and serves Prometheus metrics
  and health probes on that address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = os.Getenv("METRICS_ADDR")
			}
			return runServe(cfg, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the Prometheus metrics endpoint (e.g. :9090); disabled when empty")

	return cmd
}

func runServe(cfg config.Config, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, closer, _, err := runLogger(cfg, time.Now())
	if err != nil {
		return err
	}
	defer closer.Close()

	provider, err := newInstrumentation(shutdownCtx, metricsAddr != "")
	if err != nil {
		return err
	}
	defer shutdownInstrumentation(provider, logger)

	serverContext, err := server.NewServerContext(shutdownCtx, cfg, logger, provider.Metrics())
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	var metricsServer *server.MetricsServer
	if metricsAddr != "" {
		metricsServer, err = startMetricsServer(metricsAddr, serverContext, provider, logger)
		if err != nil {
			return err
		}
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("zoomreport", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := zoom_tools.RegisterZoomTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Zoom tools: %w", err)
	}

	logger.Info("starting MCP server", "transport", "stdio", "version", version)
	return runStdioServer(shutdownCtx, mcpSrv)
}

// startMetricsServer starts the metrics server in the background and waits
// until it accepts connections or fails.
func startMetricsServer(addr string, sc *server.ServerContext, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Health:                  server.NewHealthChecker(sc),
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// ListenAndServe fails fast on a bad or busy address.
	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(200 * time.Millisecond):
	}
	logger.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}
