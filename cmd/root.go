package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/zoomreport/internal/config"
	"github.com/teemow/zoomreport/internal/logging"
)

// rootCmd represents the base command for the zoomreport application
var rootCmd = &cobra.Command{
	Use:   "zoomreport",
	Short: "Summarizes attendance of your recent Zoom meetings",
	Long: `zoomreport fetches your scheduled Zoom meetings and their participant
reports and prints how long each participant attended.

It authenticates with a server-to-server OAuth app (account credentials) and
caches the access token between runs.

It can run as:
  - A standalone CLI tool (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// globalFlags are shared by every command that talks to Zoom.
type globalFlags struct {
	configFile string
	cacheFile  string
	logDir     string
	logLevel   string
	timeout    time.Duration
}

var flags globalFlags

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "zoomreport version %s\n" .Version}}`)

	// If no subcommand is provided, run the summary command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "summary")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Config file (default: "+config.DefaultConfigFile()+")")
	pf.StringVar(&flags.cacheFile, "cache-file", "", "Token cache file (default: "+config.DefaultCacheFile()+")")
	pf.StringVar(&flags.logDir, "log-dir", "", "Directory for the diagnostic log file (default: current directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error")
	pf.DurationVar(&flags.timeout, "timeout", 0, "Timeout for each request to Zoom (default: 30s)")

	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig reads the config file and environment, then applies the flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("cache-file") {
		cfg.CacheFile = flags.cacheFile
	}
	if changed("log-dir") {
		cfg.LogDir = flags.logDir
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if changed("timeout") {
		cfg.Timeout = flags.timeout
	}
	return cfg, nil
}

// runLogger opens the timestamped diagnostic log for a run and tags it with a
// fresh run id.
func runLogger(cfg config.Config, now time.Time) (*slog.Logger, io.Closer, string, error) {
	logger, closer, path, err := logging.NewFileLogger(cfg.LogDir, now, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = logging.WithRunID(logger, uuid.NewString())
	return logger, closer, path, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of zoomreport",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zoomreport version %s\n", version)
		},
	}
}
