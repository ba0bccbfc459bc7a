package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	metrics := newTestProvider(t).Metrics()

	// Should not panic
	metrics.RecordAPIRequest(ctx, OperationListMeetings, 200, 120*time.Millisecond)
	metrics.RecordAPIRequest(ctx, OperationListParticipants, 503, time.Second)
	metrics.RecordAPIRequest(ctx, OperationGetUser, 0, time.Millisecond)
	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthAuth(ctx, OAuthResultFailure)
	metrics.RecordCacheLookup(ctx, CacheResultHit)
	metrics.RecordCacheLookup(ctx, CacheResultMiss)
	metrics.RecordMeetingSummarized(ctx, SummaryComplete)
	metrics.RecordMeetingSummarized(ctx, SummaryParticipantsMissing)
	metrics.RecordToolInvocation(ctx, "zoom_meeting_summary", StatusSuccess, 2*time.Second)
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	nilMetrics.RecordAPIRequest(ctx, OperationListMeetings, 200, time.Millisecond)
	nilMetrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	nilMetrics.RecordCacheLookup(ctx, CacheResultHit)
	nilMetrics.RecordMeetingSummarized(ctx, SummaryComplete)
	nilMetrics.RecordToolInvocation(ctx, "tool", StatusError, time.Millisecond)

	empty := &Metrics{}
	empty.RecordAPIRequest(ctx, OperationListMeetings, 200, time.Millisecond)
	empty.RecordOAuthAuth(ctx, OAuthResultSuccess)
}
