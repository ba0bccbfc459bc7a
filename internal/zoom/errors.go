package zoom

import (
	"fmt"
)

// AuthError is returned when the account-credentials token exchange fails.
type AuthError struct {
	// StatusCode is the HTTP status of the token endpoint, 0 if no response was received.
	StatusCode int
	Reason     string
	Err        error
}

func (e *AuthError) Error() string {
	return describe("authentication failed", e.StatusCode, e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IdentityError is returned when the calling user's identity cannot be resolved.
type IdentityError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *IdentityError) Error() string {
	return describe("failed to obtain user ID", e.StatusCode, e.Body, e.Err)
}

func (e *IdentityError) Unwrap() error { return e.Err }

// FetchError is returned when a list or get call fails after transport retries.
// Partial results of a paginated call are discarded.
type FetchError struct {
	// Op is the logical operation, e.g. "list_meetings".
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	return describe(e.Op+" failed", e.StatusCode, e.Body, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CacheError reports an unreadable or corrupt token cache. Callers treat it as a
// cache miss.
type CacheError struct {
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("token cache %s unusable: %v", e.Path, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

func describe(prefix string, status int, detail string, err error) string {
	msg := prefix
	if status != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, status)
	}
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return msg
}
