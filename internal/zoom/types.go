package zoom

// User is the subset of the /users/me response that is consumed.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	AccountID string `json:"account_id"`
}

// Meeting is a scheduled meeting as returned by the meeting listing endpoint.
type Meeting struct {
	// ID is the numeric meeting id.
	ID int64 `json:"id"`

	// UUID identifies a single meeting instance.
	UUID string `json:"uuid,omitempty"`

	Topic string `json:"topic"`

	// Type is the Zoom meeting type (2 scheduled, 3 recurring without fixed time, 8 recurring).
	Type int `json:"type,omitempty"`

	// StartTime is an ISO-8601 timestamp with offset, e.g. "2024-01-01T10:00:00Z".
	StartTime string `json:"start_time"`

	// Duration is the scheduled duration in minutes.
	Duration int `json:"duration"`

	Timezone string `json:"timezone,omitempty"`
	JoinURL  string `json:"join_url,omitempty"`
}

// Participant is one row of a meeting's participant report. A person who joined
// several times appears once per session.
type Participant struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	JoinTime  string `json:"join_time"`
	LeaveTime string `json:"leave_time"`
}

// ContactEmail returns the participant's email field, falling back to the
// report's user_email only when email is missing. It is empty when the
// provider did not disclose either.
func (p Participant) ContactEmail() string {
	if p.Email != "" {
		return p.Email
	}
	return p.UserEmail
}

type meetingPage struct {
	Meetings      []Meeting `json:"meetings"`
	NextPageToken string    `json:"next_page_token"`
}

type participantPage struct {
	Participants  []Participant `json:"participants"`
	NextPageToken string        `json:"next_page_token"`
}
