package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/zoomreport/internal/config"
	"github.com/teemow/zoomreport/internal/logging"
	"github.com/teemow/zoomreport/internal/summary"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.AccountID, cfg.ClientID, cfg.ClientSecret = "acct", "client", "secret"
	cfg.CacheFile = filepath.Join(t.TempDir(), "auth_cache.json")
	cfg.APIBaseURL = baseURL + "/v2"
	cfg.TokenURL = baseURL + "/oauth/token"
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestNewServerContext_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	_, err := NewServerContext(context.Background(), cfg, logging.NewDiscardLogger(), nil)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), testConfig(t, "http://127.0.0.1:1"), logging.NewDiscardLogger(), nil)
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())
}

func TestServerContext_Reporter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /v2/users/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u1"}`))
	})
	mux.HandleFunc("GET /v2/users/u1/meetings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meetings":[{"id":5,"topic":"Sync","start_time":"2024-01-01T10:00:00Z","duration":30}]}`))
	})
	mux.HandleFunc("GET /v2/report/meetings/5/participants", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"participants":[{"name":"Alice","join_time":"2024-01-01T10:00:00Z","leave_time":"2024-01-01T10:20:00Z"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)
	cfg.Workers = 2
	sc, err := NewServerContext(context.Background(), cfg, logging.NewDiscardLogger(), nil)
	require.NoError(t, err)

	var progress [][2]int
	r := sc.Reporter(nil, func(done, total int) { progress = append(progress, [2]int{done, total}) })
	report, err := r.Generate(context.Background(), summaryWindow())
	require.NoError(t, err)
	require.Len(t, report.Meetings, 1)
	assert.Equal(t, 20, report.Meetings[0].Participants[0].DurationMinutes)
	assert.Equal(t, [][2]int{{1, 1}}, progress)

	tok, err := sc.TokenCache().Load()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "tok", tok.AccessToken)

	health := NewHealthChecker(sc)
	status, exp := health.tokenStatus()
	assert.Equal(t, tokenStatusCached, status)
	assert.NotNil(t, exp)
}

func summaryWindow() summary.Window {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return summary.TrailingWindow(now, 14)
}
