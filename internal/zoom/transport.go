package zoom

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/teemow/zoomreport/internal/logging"
)

// DefaultTimeout bounds every outbound request, token exchange included.
const DefaultTimeout = 30 * time.Second

// RetryPolicy describes which responses the transport retries and how long it waits.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BackoffFactor is the wait before the first retry; each further retry doubles it.
	BackoffFactor time.Duration

	// RetryStatuses are the HTTP status codes that trigger a retry. Transport errors
	// and every other status are returned immediately.
	RetryStatuses []int
}

// DefaultRetryPolicy retries 500, 502, 503 and 504 up to five times, waiting
// 0.1s, 0.2s, 0.4s, 0.8s and 1.6s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    5,
		BackoffFactor: 100 * time.Millisecond,
		RetryStatuses: []int{
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// CheckRetry implements retryablehttp.CheckRetry.
func (p RetryPolicy) CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil || resp == nil {
		return false, nil
	}
	return slices.Contains(p.RetryStatuses, resp.StatusCode), nil
}

// Backoff implements retryablehttp.Backoff. attemptNum is 0 for the first retry.
func (p RetryPolicy) Backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	if attemptNum > 30 {
		attemptNum = 30
	}
	return p.BackoffFactor * time.Duration(1<<uint(attemptNum))
}

// NewHTTPClient returns an *http.Client whose transport applies policy and bounds
// each attempt by timeout. When retries are exhausted the last response is handed
// back unchanged so callers can map its status to a typed error.
func NewHTTPClient(policy RetryPolicy, timeout time.Duration, logger logging.Logger) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = timeout
	rc.RetryMax = policy.MaxRetries
	rc.CheckRetry = policy.CheckRetry
	rc.Backoff = policy.Backoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if logger != nil {
		rc.Logger = retryablehttp.LeveledLogger(logger)
	}

	return rc.StandardClient()
}
