package zoom

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/teemow/zoomreport/internal/logging"
)

// fastPolicy keeps retry tests quick while exercising the same status set.
func fastPolicy() RetryPolicy {
	p := DefaultRetryPolicy()
	p.BackoffFactor = time.Millisecond
	return p
}

func testLogger() *slog.Logger {
	return logging.NewDiscardLogger()
}

// recorder is an httptest server that remembers every request it served.
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	server   *httptest.Server
}

func newRecorder(t *testing.T, handler http.HandlerFunc) *recorder {
	t.Helper()
	r := &recorder{}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodPost {
			_ = req.ParseForm()
		}
		r.mu.Lock()
		r.requests = append(r.requests, req.Clone(req.Context()))
		r.mu.Unlock()
		handler(w, req)
	}))
	t.Cleanup(r.server.Close)
	return r
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) request(i int) *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[i]
}

func newTestClient(r *recorder) *Client {
	return NewClient(
		WithBaseURL(r.server.URL),
		WithHTTPClient(NewHTTPClient(fastPolicy(), 5*time.Second, nil)),
		WithLogger(testLogger()),
	)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
