package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/zoomreport/internal/config"
	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/server"
	"github.com/teemow/zoomreport/internal/summary"
)

type summaryOptions struct {
	from string
	to   string
}

func newSummaryCmd() *cobra.Command {
	var (
		days    int
		workers int
		opts    summaryOptions
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print an attendance report for recent meetings",
		Long: `Fetch your scheduled Zoom meetings in a date window (the last 14 days by
default), fetch the participant report of each, and print a JSON report with
every participant's attendance in whole minutes.

Progress is written to stderr, the report to stdout. A detailed diagnostic log
is written to zoom_summary_YYYYMMDD_HHMMSS.log in the log directory.

Credentials are read from ZOOM_ACCOUNT_ID, ZOOM_CLIENT_ID and
ZOOM_CLIENT_SECRET or from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				cfg.Days = days
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runSummary(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), time.Now())
		},
	}

	cmd.Flags().IntVar(&days, "days", config.DefaultDays, "Length of the trailing window in days")
	cmd.Flags().StringVar(&opts.from, "from", "", "Start date YYYY-MM-DD (overrides --days)")
	cmd.Flags().StringVar(&opts.to, "to", "", "End date YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "Meetings processed concurrently")

	return cmd
}

// runSummary performs one report run and prints the meeting summaries as a JSON
// array on stdout. The window goes to the stderr header line. Fatal errors are
// logged in full, printed as one line to stderr and returned; nothing is
// written to stdout then.
func runSummary(ctx context.Context, cfg config.Config, opts summaryOptions, stdout, stderr io.Writer, now time.Time) error {
	logger, closer, logPath, err := runLogger(cfg, now)
	if err != nil {
		return err
	}
	defer closer.Close()

	console := func(msg string) {
		fmt.Fprintln(stderr, msg)
		logger.Info(msg)
	}
	fail := func(err error) error {
		logger.Error("an error occurred", logging.Err(err))
		fmt.Fprintf(stderr, "An error occurred: %v (details in %s)\n", err, logPath)
		return err
	}

	console("Starting Zoom meeting summary")

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	logger.Debug("configuration loaded", "config", cfg.String())

	window, err := summary.ParseWindow(now, cfg.Days, opts.from, opts.to)
	if err != nil {
		return fail(err)
	}

	provider, err := newInstrumentation(ctx, false)
	if err != nil {
		return fail(err)
	}
	defer shutdownInstrumentation(provider, logger)

	sc, err := server.NewServerContext(ctx, cfg, logger, provider.Metrics())
	if err != nil {
		return fail(err)
	}
	defer func() { _ = sc.Shutdown() }()

	progress := func(done, total int) {
		fmt.Fprintf(stderr, "\rProcessing meetings: %d/%d", done, total)
		if done == total {
			fmt.Fprintln(stderr)
		}
	}

	report, err := sc.Reporter(console, progress).Generate(ctx, window)
	if err != nil {
		return fail(err)
	}

	meetings := report.Meetings
	if meetings == nil {
		meetings = []summary.MeetingSummary{}
	}
	out, err := json.MarshalIndent(meetings, "", "  ")
	if err != nil {
		return fail(fmt.Errorf("failed to encode report: %w", err))
	}

	console(fmt.Sprintf("Meeting summary for %s to %s:", window.From.Format(summary.DateLayout), window.To.Format(summary.DateLayout)))
	fmt.Fprintln(stdout, string(out))

	logger.Info("run completed",
		"meetings", len(report.Meetings),
		"participants", report.ParticipantCount(),
		logging.Status(logging.StatusSuccess))
	console("Completed successfully")
	return nil
}

// newInstrumentation builds the OpenTelemetry provider from the environment.
// forceEnable turns it on regardless of INSTRUMENTATION_ENABLED.
func newInstrumentation(ctx context.Context, forceEnable bool) (*instrumentation.Provider, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if forceEnable {
		instrConfig.Enabled = true
	}

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	return provider, nil
}

func shutdownInstrumentation(provider *instrumentation.Provider, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}
