package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/zoomreport/internal/config"
	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/summary"
	"github.com/teemow/zoomreport/internal/zoom"
)

// ServerContext holds the shared clients for a run or a server lifetime.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.Config
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	cache  *zoom.TokenCache
	auth   *zoom.Authenticator
	client *zoom.Client

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext validates cfg and builds the Zoom clients. metrics may be nil.
func NewServerContext(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*ServerContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	httpClient := zoom.NewHTTPClient(zoom.DefaultRetryPolicy(), cfg.Timeout, logging.NewSlogAdapter(logger))
	cache := zoom.NewTokenCache(cfg.CacheFile)
	auth := zoom.NewAuthenticator(zoom.AuthConfig{
		Credentials: cfg.Credentials(),
		TokenURL:    cfg.TokenURL,
		HTTPClient:  httpClient,
		Logger:      logger,
		Metrics:     metrics,
	}, cache)
	client := zoom.NewClient(
		zoom.WithBaseURL(cfg.APIBaseURL),
		zoom.WithHTTPClient(httpClient),
		zoom.WithLogger(logger),
		zoom.WithMetrics(metrics),
		zoom.WithPageSize(cfg.PageSize),
	)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		cache:   cache,
		auth:    auth,
		client:  client,
	}, nil
}

// Context returns the server context. It is cancelled by Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

func (sc *ServerContext) TokenCache() *zoom.TokenCache {
	return sc.cache
}

func (sc *ServerContext) Authenticator() *zoom.Authenticator {
	return sc.auth
}

func (sc *ServerContext) Client() *zoom.Client {
	return sc.client
}

// Reporter returns a Reporter using the configured worker count. Both callbacks
// may be nil.
func (sc *ServerContext) Reporter(onStatus summary.StatusFunc, onProgress summary.ProgressFunc) *summary.Reporter {
	opts := []summary.SummarizerOption{
		summary.WithLogger(sc.logger),
		summary.WithMetrics(sc.metrics),
		summary.WithWorkers(sc.cfg.Workers),
	}
	if onProgress != nil {
		opts = append(opts, summary.WithProgress(onProgress))
	}
	summarizer := summary.NewSummarizer(sc.client, opts...)
	return summary.NewReporter(sc.auth, sc.client, summarizer, sc.logger, onStatus)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the context. It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
