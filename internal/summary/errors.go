package summary

import "fmt"

// TimestampParseError is returned when a provider timestamp cannot be parsed.
// It aborts the whole report.
type TimestampParseError struct {
	// Field names the offending field, e.g. "start_time" or "join_time".
	Field string
	Value string

	// MeetingID is 0 when the value does not belong to a meeting.
	MeetingID int64
	Err       error
}

func (e *TimestampParseError) Error() string {
	if e.MeetingID != 0 {
		return fmt.Sprintf("failed to parse %s %q of meeting %d: %v", e.Field, e.Value, e.MeetingID, e.Err)
	}
	return fmt.Sprintf("failed to parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *TimestampParseError) Unwrap() error { return e.Err }
