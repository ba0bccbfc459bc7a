package summary

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// TimeLayout renders meeting start and end times.
	TimeLayout = "2006-01-02 15:04"

	// DateLayout renders the report window.
	DateLayout = "2006-01-02"

	// UnknownEmail stands in for participants without a disclosed email.
	UnknownEmail = "N/A"
)

// ParticipantSummary is one attendance session of a participant.
type ParticipantSummary struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	DurationMinutes int    `json:"duration_minutes"`
}

// MeetingSummary describes one meeting and who attended it.
type MeetingSummary struct {
	MeetingID int64
	Topic     string

	// StartTime keeps the offset the provider reported it in.
	StartTime time.Time

	// EndTime is StartTime plus the scheduled duration, not the actual end.
	EndTime time.Time

	ScheduledDurationMinutes int
	Participants             []ParticipantSummary

	// ParticipantsError is set when the participant report could not be fetched.
	ParticipantsError string
}

type meetingSummaryJSON struct {
	MeetingID                int64                `json:"meeting_id"`
	Topic                    string               `json:"topic"`
	StartTime                string               `json:"start_time"`
	EndTime                  string               `json:"end_time"`
	ScheduledDurationMinutes int                  `json:"scheduled_duration_minutes"`
	Participants             []ParticipantSummary `json:"participants"`
	ParticipantsError        string               `json:"participants_error,omitempty"`
}

// MarshalJSON renders times in TimeLayout and never emits a null participant list.
func (m MeetingSummary) MarshalJSON() ([]byte, error) {
	participants := m.Participants
	if participants == nil {
		participants = []ParticipantSummary{}
	}
	return json.Marshal(meetingSummaryJSON{
		MeetingID:                m.MeetingID,
		Topic:                    m.Topic,
		StartTime:                m.StartTime.Format(TimeLayout),
		EndTime:                  m.EndTime.Format(TimeLayout),
		ScheduledDurationMinutes: m.ScheduledDurationMinutes,
		Participants:             participants,
		ParticipantsError:        m.ParticipantsError,
	})
}

// Report is the result of one run. Meetings keep the provider's listing order.
type Report struct {
	From     time.Time
	To       time.Time
	Meetings []MeetingSummary
}

// MarshalJSON renders the window as dates.
func (r Report) MarshalJSON() ([]byte, error) {
	meetings := r.Meetings
	if meetings == nil {
		meetings = []MeetingSummary{}
	}
	return json.Marshal(struct {
		From     string           `json:"from"`
		To       string           `json:"to"`
		Meetings []MeetingSummary `json:"meetings"`
	}{
		From:     r.From.Format(DateLayout),
		To:       r.To.Format(DateLayout),
		Meetings: meetings,
	})
}

// ParticipantCount returns the number of attendance sessions across all meetings.
func (r *Report) ParticipantCount() int {
	n := 0
	for _, m := range r.Meetings {
		n += len(m.Participants)
	}
	return n
}

// Window is the time range a report covers.
type Window struct {
	From time.Time
	To   time.Time
}

// TrailingWindow returns the window of the given number of days ending at now.
func TrailingWindow(now time.Time, days int) Window {
	return Window{From: now.AddDate(0, 0, -days), To: now}
}

// ParseWindow builds a window from optional YYYY-MM-DD dates. A missing to
// defaults to now and a missing from to days before to.
func ParseWindow(now time.Time, days int, from, to string) (Window, error) {
	w := Window{To: now}
	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, now.Location())
		if err != nil {
			return Window{}, &TimestampParseError{Field: "to", Value: to, Err: err}
		}
		w.To = t
	}
	if from != "" {
		f, err := time.ParseInLocation(DateLayout, from, now.Location())
		if err != nil {
			return Window{}, &TimestampParseError{Field: "from", Value: from, Err: err}
		}
		w.From = f
	} else {
		w.From = w.To.AddDate(0, 0, -days)
	}
	if w.From.After(w.To) {
		return Window{}, fmt.Errorf("window start %s is after end %s", w.From.Format(DateLayout), w.To.Format(DateLayout))
	}
	return w, nil
}
