package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/zoom"
)

// fakeZoom serves the token endpoint and the four API calls a report needs.
type fakeZoom struct {
	server        *httptest.Server
	tokenCalls    atomic.Int32
	meetingStatus int
	failMeeting   int64
}

func newFakeZoom(t *testing.T) *fakeZoom {
	t.Helper()
	f := &fakeZoom{meetingStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		writeJSON(w, http.StatusOK, `{"access_token":"tok-e2e","token_type":"bearer","expires_in":3599}`)
	})
	mux.HandleFunc("GET /v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-e2e" {
			writeJSON(w, http.StatusUnauthorized, `{"code":124}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"u1"}`)
	})
	mux.HandleFunc("GET /v2/users/u1/meetings", func(w http.ResponseWriter, r *http.Request) {
		if f.meetingStatus != http.StatusOK {
			writeJSON(w, f.meetingStatus, `{"message":"nope"}`)
			return
		}
		if r.URL.Query().Get("next_page_token") == "" {
			writeJSON(w, http.StatusOK, `{"meetings":[{"id":101,"topic":"Standup","start_time":"2024-01-01T10:00:00Z","duration":15}],"next_page_token":"p2"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"meetings":[{"id":102,"topic":"Review","start_time":"2024-01-02T14:00:00+02:00","duration":60}]}`)
	})
	mux.HandleFunc("GET /v2/report/meetings/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "101":
			if f.failMeeting == 101 {
				writeJSON(w, http.StatusNotFound, `{"code":3001}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"participants":[{"name":"Alice","user_email":"alice@example.com","join_time":"2024-01-01T10:00:00Z","leave_time":"2024-01-01T10:15:45Z"}]}`)
		case "102":
			writeJSON(w, http.StatusOK, `{"participants":[{"name":"Bob","join_time":"2024-01-02T12:00:00Z","leave_time":"2024-01-02T12:59:00Z"},{"name":"Carol","email":"carol@example.com","join_time":"2024-01-02T12:30:00Z","leave_time":"2024-01-02T13:00:00Z"}]}`)
		default:
			writeJSON(w, http.StatusNotFound, `{}`)
		}
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestReporter(t *testing.T, f *fakeZoom, status StatusFunc) (*Reporter, *zoom.TokenCache) {
	t.Helper()
	logger := logging.NewDiscardLogger()
	policy := zoom.DefaultRetryPolicy()
	policy.BackoffFactor = time.Millisecond
	hc := zoom.NewHTTPClient(policy, 5*time.Second, nil)

	cache := zoom.NewTokenCache(filepath.Join(t.TempDir(), "auth_cache.json"))
	auth := zoom.NewAuthenticator(zoom.AuthConfig{
		Credentials: zoom.Credentials{AccountID: "a", ClientID: "c", ClientSecret: "s"},
		TokenURL:    f.server.URL + "/oauth/token",
		HTTPClient:  hc,
		Logger:      logger,
	}, cache)
	client := zoom.NewClient(zoom.WithBaseURL(f.server.URL+"/v2"), zoom.WithHTTPClient(hc), zoom.WithLogger(logger))

	return NewReporter(auth, client, NewSummarizer(client, WithLogger(logger)), logger, status), cache
}

func testWindow() Window {
	return Window{
		From: time.Date(2023, 12, 19, 9, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestReporter_EndToEnd(t *testing.T) {
	f := newFakeZoom(t)
	var status []string
	r, _ := newTestReporter(t, f, func(msg string) { status = append(status, msg) })

	report, err := r.Generate(context.Background(), testWindow())
	require.NoError(t, err)

	require.Len(t, report.Meetings, 2)
	assert.Equal(t, "Standup", report.Meetings[0].Topic)
	assert.Equal(t, []ParticipantSummary{{Name: "Alice", Email: "alice@example.com", DurationMinutes: 15}}, report.Meetings[0].Participants)

	review := report.Meetings[1]
	assert.Equal(t, "2024-01-02 14:00", review.StartTime.Format(TimeLayout))
	assert.Equal(t, "2024-01-02 15:00", review.EndTime.Format(TimeLayout))
	assert.Equal(t, []ParticipantSummary{
		{Name: "Bob", Email: UnknownEmail, DurationMinutes: 59},
		{Name: "Carol", Email: "carol@example.com", DurationMinutes: 30},
	}, review.Participants)
	assert.Equal(t, 3, report.ParticipantCount())

	assert.Equal(t, []string{
		"[OK] Authenticated",
		"[OK] Fetched user info",
		"Fetching meetings from 2023-12-19 to 2024-01-02",
		"[OK] Fetched 2 meetings",
	}, status)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"from":"2023-12-19","to":"2024-01-02","meetings":[`))
}

func TestReporter_ReusesCachedToken(t *testing.T) {
	f := newFakeZoom(t)
	r, _ := newTestReporter(t, f, nil)

	_, err := r.Generate(context.Background(), testWindow())
	require.NoError(t, err)
	_, err = r.Generate(context.Background(), testWindow())
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestReporter_ParticipantFailureKeepsOtherMeetings(t *testing.T) {
	f := newFakeZoom(t)
	f.failMeeting = 101
	r, _ := newTestReporter(t, f, nil)

	report, err := r.Generate(context.Background(), testWindow())
	require.NoError(t, err)
	require.Len(t, report.Meetings, 2)
	assert.Empty(t, report.Meetings[0].Participants)
	assert.NotEmpty(t, report.Meetings[0].ParticipantsError)
	assert.Len(t, report.Meetings[1].Participants, 2)
}

func TestReporter_MeetingListFailureIsFatal(t *testing.T) {
	f := newFakeZoom(t)
	f.meetingStatus = http.StatusForbidden
	r, _ := newTestReporter(t, f, nil)

	report, err := r.Generate(context.Background(), testWindow())
	assert.Nil(t, report)

	var fetchErr *zoom.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
}

func TestWindows(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	w := TrailingWindow(now, 14)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, now, w.To)

	w, err := ParseWindow(now, 7, "", "")
	require.NoError(t, err)
	assert.Equal(t, TrailingWindow(now, 7), w)

	w, err = ParseWindow(now, 7, "2024-01-02", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", w.From.Format(DateLayout))
	assert.Equal(t, "2024-01-05", w.To.Format(DateLayout))

	w, err = ParseWindow(now, 3, "", "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", w.From.Format(DateLayout))

	_, err = ParseWindow(now, 7, "2024-02-01", "2024-01-01")
	assert.Error(t, err)

	_, err = ParseWindow(now, 7, "01/02/2024", "")
	var tsErr *TimestampParseError
	assert.True(t, errors.As(err, &tsErr))
}
