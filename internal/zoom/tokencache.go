package zoom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CachedToken is the persisted form of an access token.
type CachedToken struct {
	AccessToken string    `json:"access_token"`
	Expiration  time.Time `json:"expiration"`
}

// Valid reports whether the token can still be used at now.
func (t *CachedToken) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.Expiration)
}

// TokenCache stores a single access token and its expiry in a JSON file.
// It assumes one process at a time; concurrent writers are not coordinated.
type TokenCache struct {
	path string
	now  func() time.Time
}

// NewTokenCache returns a cache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path, now: time.Now}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the cached token, or nil when there is no cache file or the stored
// token has expired. A corrupt file yields a *CacheError.
func (c *TokenCache) Load() (*CachedToken, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &CacheError{Path: c.path, Err: err}
	}

	var tok CachedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, &CacheError{Path: c.path, Err: fmt.Errorf("failed to decode cache: %w", err)}
	}
	if tok.AccessToken == "" {
		return nil, &CacheError{Path: c.path, Err: errors.New("access_token missing")}
	}

	if !tok.Valid(c.now()) {
		return nil, nil
	}
	return &tok, nil
}

// Save overwrites the cache with token, expiring ttl from now.
func (c *TokenCache) Save(token string, ttl time.Duration) error {
	rec := CachedToken{
		AccessToken: token,
		Expiration:  c.now().Add(ttl),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode token cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".auth_cache-*")
	if err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to protect token cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("failed to replace token cache: %w", err)
	}
	return nil
}

// Clear removes the cache file. Clearing a missing cache is not an error.
func (c *TokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token cache: %w", err)
	}
	return nil
}
