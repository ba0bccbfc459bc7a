package zoom

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	AccountID:    "acct-1",
	ClientID:     "client-1",
	ClientSecret: "secret-1",
}

func newTestAuthenticator(t *testing.T, rec *recorder, cache *TokenCache) *Authenticator {
	t.Helper()
	return NewAuthenticator(AuthConfig{
		Credentials: testCreds,
		TokenURL:    rec.server.URL + "/oauth/token",
		HTTPClient:  NewHTTPClient(fastPolicy(), 5*time.Second, nil),
		Logger:      testLogger(),
	}, cache)
}

func tokenHandler(token string, expiresIn int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token":"`+token+`","token_type":"bearer","expires_in":`+strconv.Itoa(expiresIn)+`,"scope":"meeting:read"}`)
	}
}

func TestAuthenticator_ExchangeSendsAccountCredentials(t *testing.T) {
	rec := newRecorder(t, tokenHandler("fresh-token", 3600))
	auth := newTestAuthenticator(t, rec, nil)

	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)

	require.Equal(t, 1, rec.count())
	req := rec.request(0)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/oauth/token", req.URL.Path)
	assert.Equal(t, "account_credentials", req.PostForm.Get("grant_type"))
	assert.Equal(t, "acct-1", req.PostForm.Get("account_id"))
	assert.Equal(t, "client-1", req.PostForm.Get("client_id"))
	assert.Equal(t, "secret-1", req.PostForm.Get("client_secret"))
}

func TestAuthenticator_CachesToken(t *testing.T) {
	rec := newRecorder(t, tokenHandler("cached-token", 3600))
	cache := NewTokenCache(filepath.Join(t.TempDir(), "auth_cache.json"))
	auth := newTestAuthenticator(t, rec, cache)

	first, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	second, err := auth.AccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cached-token", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, rec.count(), "second call must be served from the cache")

	stored, err := cache.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "cached-token", stored.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), stored.Expiration, time.Minute)
}

func TestAuthenticator_UsesExistingCacheWithoutNetwork(t *testing.T) {
	rec := newRecorder(t, tokenHandler("unused", 3600))
	cache := NewTokenCache(filepath.Join(t.TempDir(), "auth_cache.json"))
	require.NoError(t, cache.Save("from-disk", time.Hour))

	auth := newTestAuthenticator(t, rec, cache)
	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-disk", token)
	assert.Equal(t, 0, rec.count())
}

func TestAuthenticator_ExpiredCacheTriggersExchange(t *testing.T) {
	rec := newRecorder(t, tokenHandler("renewed", 3600))
	cache := NewTokenCache(filepath.Join(t.TempDir(), "auth_cache.json"))
	require.NoError(t, cache.Save("stale", -time.Minute))

	auth := newTestAuthenticator(t, rec, cache)
	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "renewed", token)
	assert.Equal(t, 1, rec.count())
}

func TestAuthenticator_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "invalid client", status: http.StatusBadRequest, body: `{"reason":"Invalid client_id or client_secret","error":"invalid_client"}`, wantStatus: http.StatusBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"reason":"unauthorized"}`, wantStatus: http.StatusUnauthorized},
		{name: "missing access token", status: http.StatusOK, body: `{"token_type":"bearer","expires_in":3600}`, wantStatus: 0},
		{name: "missing expires_in", status: http.StatusOK, body: `{"access_token":"abc","token_type":"bearer"}`, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			cache := NewTokenCache(filepath.Join(t.TempDir(), "auth_cache.json"))
			auth := newTestAuthenticator(t, rec, cache)

			token, err := auth.AccessToken(context.Background())
			assert.Empty(t, token)

			var authErr *AuthError
			require.True(t, errors.As(err, &authErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantStatus, authErr.StatusCode)

			stored, loadErr := cache.Load()
			assert.NoError(t, loadErr)
			assert.Nil(t, stored, "failed exchanges must not be cached")
		})
	}
}

func TestAuthenticator_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, `{}`)
			return
		}
		tokenHandler("after-retry", 3600)(w, r)
	})
	auth := newTestAuthenticator(t, rec, nil)

	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "after-retry", token)
	assert.Equal(t, 2, rec.count())
}

func TestAuthenticator_MissingCredentials(t *testing.T) {
	rec := newRecorder(t, tokenHandler("unused", 3600))
	auth := NewAuthenticator(AuthConfig{
		Credentials: Credentials{AccountID: "acct"},
		TokenURL:    rec.server.URL,
		Logger:      testLogger(),
	}, nil)

	_, err := auth.AccessToken(context.Background())
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 0, rec.count())
}

func TestAuthenticator_CorruptCacheIsAMiss(t *testing.T) {
	rec := newRecorder(t, tokenHandler("replacement", 3600))
	dir := t.TempDir()
	cache := NewTokenCache(filepath.Join(dir, "auth_cache.json"))
	require.NoError(t, os.WriteFile(cache.Path(), []byte("garbage"), 0o600))

	auth := newTestAuthenticator(t, rec, cache)
	token, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "replacement", token)

	stored, err := cache.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "replacement", stored.AccessToken)
}
