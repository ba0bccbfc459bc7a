package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/zoom"
)

// TokenSource provides bearer tokens.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// MeetingLister resolves the calling user and lists their meetings.
type MeetingLister interface {
	GetUserID(ctx context.Context, token string) (string, error)
	ListMeetings(ctx context.Context, token, userID string, from, to time.Time) ([]zoom.Meeting, error)
}

// StatusFunc receives short human-readable status lines, e.g. "[OK] Authenticated".
type StatusFunc func(msg string)

// Reporter produces a Report for a window from start to finish.
type Reporter struct {
	tokens     TokenSource
	meetings   MeetingLister
	summarizer *Summarizer
	logger     *slog.Logger
	onStatus   StatusFunc
}

// NewReporter wires a Reporter. onStatus may be nil.
func NewReporter(tokens TokenSource, meetings MeetingLister, summarizer *Summarizer, logger *slog.Logger, onStatus StatusFunc) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if onStatus == nil {
		onStatus = func(string) {}
	}
	return &Reporter{
		tokens:     tokens,
		meetings:   meetings,
		summarizer: summarizer,
		logger:     logger,
		onStatus:   onStatus,
	}
}

// Generate authenticates, lists the user's meetings in w and summarizes them.
// Any error is fatal and no partial report is returned.
func (r *Reporter) Generate(ctx context.Context, w Window) (*Report, error) {
	ctx, span := instrumentation.StartSpan(ctx, "zoomreport.generate")
	defer span.End()

	report, err := r.generate(ctx, w)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		r.logger.Error("report generation failed", logging.Err(err))
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return report, nil
}

func (r *Reporter) generate(ctx context.Context, w Window) (*Report, error) {
	token, err := r.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	r.onStatus("[OK] Authenticated")

	userID, err := r.meetings.GetUserID(ctx, token)
	if err != nil {
		return nil, err
	}
	r.onStatus("[OK] Fetched user info")

	r.onStatus(fmt.Sprintf("Fetching meetings from %s to %s", w.From.Format(DateLayout), w.To.Format(DateLayout)))
	meetings, err := r.meetings.ListMeetings(ctx, token, userID, w.From, w.To)
	if err != nil {
		return nil, err
	}
	r.onStatus(fmt.Sprintf("[OK] Fetched %d meetings", len(meetings)))

	summaries, err := r.summarizer.Summarize(ctx, token, meetings)
	if err != nil {
		return nil, err
	}

	return &Report{From: w.From, To: w.To, Meetings: summaries}, nil
}
