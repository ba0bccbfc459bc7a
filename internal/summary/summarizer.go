package summary

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/zoom"
)

// ParticipantLister fetches the participant report of one meeting.
type ParticipantLister interface {
	ListParticipants(ctx context.Context, token string, meetingID int64) ([]zoom.Participant, error)
}

// ProgressFunc is called after each meeting with the number done so far.
type ProgressFunc func(done, total int)

// Summarizer joins meetings with their participants.
type Summarizer struct {
	participants ParticipantLister
	logger       *slog.Logger
	metrics      *instrumentation.Metrics
	workers      int
	onProgress   ProgressFunc
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) SummarizerOption {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) SummarizerOption {
	return func(s *Summarizer) {
		s.metrics = m
	}
}

// WithWorkers sets how many meetings are processed concurrently. Values below 2
// mean strictly sequential processing.
func WithWorkers(n int) SummarizerOption {
	return func(s *Summarizer) {
		s.workers = n
	}
}

// WithProgress registers a progress callback. It may be called from several
// goroutines but never concurrently.
func WithProgress(fn ProgressFunc) SummarizerOption {
	return func(s *Summarizer) {
		s.onProgress = fn
	}
}

// NewSummarizer creates a Summarizer that fetches participants through lister.
func NewSummarizer(lister ParticipantLister, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		participants: lister,
		workers:      1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Summarize builds a MeetingSummary for every meeting, in input order. A failed
// participant listing is recorded on that meeting and does not stop the run; a
// timestamp that cannot be parsed does, and no partial result is returned.
func (s *Summarizer) Summarize(ctx context.Context, token string, meetings []zoom.Meeting) ([]MeetingSummary, error) {
	out := make([]MeetingSummary, len(meetings))
	progress := s.progressTracker(len(meetings))

	if s.workers <= 1 {
		for i := range meetings {
			ms, err := s.summarizeMeeting(ctx, token, meetings[i])
			if err != nil {
				return nil, err
			}
			out[i] = *ms
			progress()
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i := range meetings {
			g.Go(func() error {
				ms, err := s.summarizeMeeting(gctx, token, meetings[i])
				if err != nil {
					return err
				}
				out[i] = *ms
				progress()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	s.logger.Info("summarized meetings", "count", len(out))
	return out, nil
}

func (s *Summarizer) progressTracker(total int) func() {
	if s.onProgress == nil {
		return func() {}
	}
	var (
		mu   sync.Mutex
		done int
	)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		s.onProgress(done, total)
	}
}

func (s *Summarizer) summarizeMeeting(ctx context.Context, token string, m zoom.Meeting) (*MeetingSummary, error) {
	logger := s.logger.With(logging.MeetingID(m.ID))

	start, err := parseTimestamp(m.StartTime)
	if err != nil {
		return nil, &TimestampParseError{Field: "start_time", Value: m.StartTime, MeetingID: m.ID, Err: err}
	}

	ms := &MeetingSummary{
		MeetingID:                m.ID,
		Topic:                    m.Topic,
		StartTime:                start,
		EndTime:                  start.Add(time.Duration(m.Duration) * time.Minute),
		ScheduledDurationMinutes: m.Duration,
		Participants:             []ParticipantSummary{},
	}

	participants, err := s.participants.ListParticipants(ctx, token, m.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("failed to fetch participants, continuing without them", logging.Err(err))
		ms.ParticipantsError = err.Error()
		s.metrics.RecordMeetingSummarized(ctx, instrumentation.SummaryParticipantsMissing)
		return ms, nil
	}

	for _, p := range participants {
		minutes, err := AttendanceMinutes(p.JoinTime, p.LeaveTime)
		if err != nil {
			var tsErr *TimestampParseError
			if errors.As(err, &tsErr) {
				tsErr.MeetingID = m.ID
			}
			return nil, err
		}
		email := p.ContactEmail()
		if email == "" {
			email = UnknownEmail
		}
		ms.Participants = append(ms.Participants, ParticipantSummary{
			Name:            p.Name,
			Email:           email,
			DurationMinutes: minutes,
		})
	}

	logger.Debug("summarized meeting", "participants", len(ms.Participants))
	s.metrics.RecordMeetingSummarized(ctx, instrumentation.SummaryComplete)
	return ms, nil
}

// AttendanceMinutes returns the whole minutes between join and leave, rounded
// down. A leave before join yields a negative value.
func AttendanceMinutes(join, leave string) (int, error) {
	j, err := parseTimestamp(join)
	if err != nil {
		return 0, &TimestampParseError{Field: "join_time", Value: join, Err: err}
	}
	l, err := parseTimestamp(leave)
	if err != nil {
		return 0, &TimestampParseError{Field: "leave_time", Value: leave, Err: err}
	}
	return int(math.Floor(l.Sub(j).Seconds() / 60)), nil
}

// timestampLayouts are tried in order. Zoom sends RFC 3339 with a Z suffix; the
// second layout accepts ISO 8601 offsets without a colon such as +0000.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

func parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
