package zoom

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserID(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"user-42","email":"host@example.com","account_id":"acct"}`)
	})
	c := newTestClient(rec)

	id, err := c.GetUserID(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-42", id)

	req := rec.request(0)
	assert.Equal(t, "/users/me", req.URL.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestGetUserID_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		attempts   int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"code":124,"message":"Invalid access token."}`, wantStatus: 401, attempts: 1},
		{name: "server error exhausts retries", status: http.StatusInternalServerError, body: `{}`, wantStatus: 500, attempts: 6},
		{name: "missing id", status: http.StatusOK, body: `{"email":"host@example.com"}`, wantStatus: 200, attempts: 1},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantStatus: 200, attempts: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c := newTestClient(rec)

			id, err := c.GetUserID(context.Background(), "tok")
			assert.Empty(t, id)

			var idErr *IdentityError
			require.True(t, errors.As(err, &idErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantStatus, idErr.StatusCode)
			assert.Equal(t, tt.attempts, rec.count())
		})
	}
}

func TestListMeetings_FollowsCursors(t *testing.T) {
	pages := map[string]string{
		"":   `{"meetings":[{"id":1,"topic":"A","start_time":"2024-01-01T10:00:00Z","duration":30}],"next_page_token":"c1"}`,
		"c1": `{"meetings":[{"id":2,"topic":"B","start_time":"2024-01-02T10:00:00Z","duration":45}],"next_page_token":"c2"}`,
		"c2": `{"meetings":[{"id":3,"topic":"C","start_time":"2024-01-03T10:00:00Z","duration":60}],"next_page_token":""}`,
	}
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("next_page_token")]
		if !ok {
			writeJSON(w, http.StatusBadRequest, `{"message":"bad cursor"}`)
			return
		}
		writeJSON(w, http.StatusOK, body)
	})
	c := newTestClient(rec)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	meetings, err := c.ListMeetings(context.Background(), "tok", "user-42", from, to)
	require.NoError(t, err)

	require.Len(t, meetings, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{meetings[0].ID, meetings[1].ID, meetings[2].ID})
	assert.Equal(t, "B", meetings[1].Topic)
	assert.Equal(t, 45, meetings[1].Duration)

	require.Equal(t, 3, rec.count())
	var cursors []string
	for i := 0; i < rec.count(); i++ {
		q := rec.request(i).URL.Query()
		cursors = append(cursors, q.Get("next_page_token"))
		assert.Equal(t, "/users/user-42/meetings", rec.request(i).URL.Path)
		assert.Equal(t, "scheduled", q.Get("type"))
		assert.Equal(t, "2024-01-01", q.Get("from"))
		assert.Equal(t, "2024-01-15", q.Get("to"))
		assert.Equal(t, "300", q.Get("page_size"))
	}
	assert.Equal(t, []string{"", "c1", "c2"}, cursors)
	assert.False(t, rec.request(0).URL.Query().Has("next_page_token"))
}

func TestListMeetings_Empty(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"meetings":[],"next_page_token":""}`)
	})
	c := newTestClient(rec)

	meetings, err := c.ListMeetings(context.Background(), "tok", "me", time.Now(), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, meetings)
	assert.Empty(t, meetings)
}

func TestListMeetings_FailureDropsPartialResults(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("next_page_token") == "" {
			writeJSON(w, http.StatusOK, `{"meetings":[{"id":1,"topic":"A"}],"next_page_token":"c1"}`)
			return
		}
		writeJSON(w, http.StatusForbidden, `{"message":"forbidden"}`)
	})
	c := newTestClient(rec)

	meetings, err := c.ListMeetings(context.Background(), "tok", "me", time.Now(), time.Now())
	assert.Nil(t, meetings)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "list_meetings", fetchErr.Op)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Body, "forbidden")
	assert.Equal(t, 2, rec.count())
}

func TestListMeetings_NotFoundIsNotRetried(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"code":1001,"message":"User does not exist"}`)
	})
	c := newTestClient(rec)

	_, err := c.ListMeetings(context.Background(), "tok", "ghost", time.Now(), time.Now())
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, 1, rec.count())
}

func TestListMeetings_RecoversFromTransientError(t *testing.T) {
	var calls atomic.Int32
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusBadGateway, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"meetings":[{"id":7,"topic":"Retro"}]}`)
	})
	c := newTestClient(rec)

	meetings, err := c.ListMeetings(context.Background(), "tok", "me", time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, int64(7), meetings[0].ID)
	assert.Equal(t, 2, rec.count())
}

func TestClient_PageSizeIsCapped(t *testing.T) {
	for _, tt := range []struct {
		in   int
		want string
	}{
		{in: 0, want: "300"},
		{in: 50, want: "50"},
		{in: 1000, want: "300"},
	} {
		rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"meetings":[]}`)
		})
		c := NewClient(
			WithBaseURL(rec.server.URL+"/"),
			WithHTTPClient(NewHTTPClient(fastPolicy(), 5*time.Second, nil)),
			WithLogger(testLogger()),
			WithPageSize(tt.in),
		)
		_, err := c.ListMeetings(context.Background(), "tok", "me", time.Now(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, tt.want, rec.request(0).URL.Query().Get("page_size"))
	}
}

func TestGetMeeting(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meetings/85746065432" {
			writeJSON(w, http.StatusNotFound, `{"code":3001,"message":"Meeting does not exist"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":85746065432,"uuid":"abc==","topic":"Planning","type":2,"start_time":"2024-01-01T10:00:00Z","duration":60,"timezone":"Europe/Berlin"}`)
	})
	c := newTestClient(rec)

	m, err := c.GetMeeting(context.Background(), "tok", 85746065432)
	require.NoError(t, err)
	assert.Equal(t, "Planning", m.Topic)
	assert.Equal(t, 60, m.Duration)
	assert.Equal(t, "Europe/Berlin", m.Timezone)

	_, err = c.GetMeeting(context.Background(), "tok", 1)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "get_meeting", fetchErr.Op)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}
