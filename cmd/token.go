package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/zoomreport/internal/config"
	"github.com/teemow/zoomreport/internal/server"
	"github.com/teemow/zoomreport/internal/zoom"
)

func newTokenCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Acquire or clear the cached access token",
		Long: `Make sure a valid access token is cached, exchanging the account
credentials only when the cache holds nothing usable. The token itself is never
printed, only where it is cached and when it expires.

With --clear the cached token is removed instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if clear {
				return runTokenClear(cfg, cmd.OutOrStdout())
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runToken(ctx, cfg, cmd.OutOrStdout(), time.Now())
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the cached token")

	return cmd
}

func runTokenClear(cfg config.Config, stdout io.Writer) error {
	cache := zoom.NewTokenCache(cfg.CacheFile)
	if err := cache.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Cleared cached token at %s\n", cache.Path())
	return nil
}

func runToken(ctx context.Context, cfg config.Config, stdout io.Writer, now time.Time) error {
	logger, closer, _, err := runLogger(cfg, now)
	if err != nil {
		return err
	}
	defer closer.Close()

	sc, err := server.NewServerContext(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	if _, err := sc.Authenticator().AccessToken(ctx); err != nil {
		return err
	}

	cached, err := sc.TokenCache().Load()
	if err != nil {
		return err
	}
	if cached == nil {
		return fmt.Errorf("token was obtained but could not be cached at %s", sc.TokenCache().Path())
	}

	fmt.Fprintf(stdout, "Access token cached at %s\n", sc.TokenCache().Path())
	fmt.Fprintf(stdout, "Expires %s (in %s)\n",
		cached.Expiration.Local().Format(time.RFC3339),
		time.Until(cached.Expiration).Truncate(time.Second))
	return nil
}
