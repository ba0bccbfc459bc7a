package zoom

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
)

const (
	// DefaultTokenURL is Zoom's OAuth token endpoint.
	DefaultTokenURL = "https://zoom.us/oauth/token"

	// GrantTypeAccountCredentials is Zoom's server-to-server grant type.
	GrantTypeAccountCredentials = "account_credentials"
)

// Credentials identify a server-to-server OAuth app.
type Credentials struct {
	AccountID    string
	ClientID     string
	ClientSecret string
}

// AuthConfig configures an Authenticator.
type AuthConfig struct {
	Credentials Credentials

	// TokenURL defaults to DefaultTokenURL.
	TokenURL string

	// HTTPClient performs the exchange. Defaults to a retrying client with DefaultTimeout.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Authenticator hands out bearer tokens, exchanging credentials only when the
// token cache has nothing valid.
type Authenticator struct {
	creds      Credentials
	tokenURL   string
	httpClient *http.Client
	cache      *TokenCache
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	now        func() time.Time
}

// NewAuthenticator creates an Authenticator. cache may be nil, in which case every
// call performs an exchange.
func NewAuthenticator(cfg AuthConfig, cache *TokenCache) *Authenticator {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = NewHTTPClient(DefaultRetryPolicy(), DefaultTimeout, logging.NewSlogAdapter(cfg.Logger))
	}

	return &Authenticator{
		creds:      cfg.Credentials,
		tokenURL:   cfg.TokenURL,
		httpClient: cfg.HTTPClient,
		cache:      cache,
		logger:     logging.WithOperation(cfg.Logger, "zoom.auth"),
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
}

// AccessToken returns a usable bearer token. A valid cached token is returned
// without any network call; otherwise a new one is exchanged and cached.
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	if tok := a.cachedToken(ctx); tok != nil {
		a.logger.Info("using cached access token", "expires", tok.Expiration.Format(time.RFC3339))
		return tok.AccessToken, nil
	}

	token, ttl, err := a.exchange(ctx)
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		a.logger.Error("failed to obtain access token", logging.Err(err))
		return "", err
	}
	a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	if a.cache != nil {
		if err := a.cache.Save(token, ttl); err != nil {
			a.logger.Warn("failed to save access token to cache", logging.Err(err))
		} else {
			a.logger.Info("saved access token to cache", "path", a.cache.Path())
		}
	}

	a.logger.Info("obtained new access token",
		"token", logging.SanitizeToken(token),
		"expires_in", ttl.String())
	return token, nil
}

func (a *Authenticator) cachedToken(ctx context.Context) *CachedToken {
	if a.cache == nil {
		return nil
	}

	tok, err := a.cache.Load()
	if err != nil {
		var cacheErr *CacheError
		if errors.As(err, &cacheErr) {
			a.logger.Warn("ignoring unusable token cache", logging.Err(err))
		}
		tok = nil
	}

	if tok == nil {
		a.metrics.RecordCacheLookup(ctx, instrumentation.CacheResultMiss)
		return nil
	}
	a.metrics.RecordCacheLookup(ctx, instrumentation.CacheResultHit)
	return tok
}

// exchange performs the account-credentials grant and returns the token together
// with its declared lifetime.
func (a *Authenticator) exchange(ctx context.Context) (string, time.Duration, error) {
	if a.creds.AccountID == "" || a.creds.ClientID == "" || a.creds.ClientSecret == "" {
		return "", 0, &AuthError{Reason: "account id, client id and client secret are required"}
	}

	ctx, span := instrumentation.StartAPISpan(ctx, instrumentation.OperationTokenExchange)
	defer span.End()

	conf := &clientcredentials.Config{
		ClientID:     a.creds.ClientID,
		ClientSecret: a.creds.ClientSecret,
		TokenURL:     a.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"grant_type": {GrantTypeAccountCredentials},
			"account_id": {a.creds.AccountID},
		},
	}

	start := time.Now()
	tok, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, a.httpClient))
	if err != nil {
		authErr := &AuthError{Err: err}
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			authErr.StatusCode = rErr.Response.StatusCode
			authErr.Err = nil
			authErr.Reason = logging.Truncate(string(rErr.Body), 512)
		}
		a.metrics.RecordAPIRequest(ctx, instrumentation.OperationTokenExchange, authErr.StatusCode, time.Since(start))
		instrumentation.SetSpanError(span, authErr)
		return "", 0, authErr
	}
	a.metrics.RecordAPIRequest(ctx, instrumentation.OperationTokenExchange, http.StatusOK, time.Since(start))

	ttl, ok := declaredTTL(tok)
	if !ok {
		err := &AuthError{StatusCode: http.StatusOK, Reason: "token response missing expires_in"}
		instrumentation.SetSpanError(span, err)
		return "", 0, err
	}

	instrumentation.SetSpanSuccess(span)
	return tok.AccessToken, ttl, nil
}

// declaredTTL reads expires_in from the raw token response.
func declaredTTL(tok *oauth2.Token) (time.Duration, bool) {
	var secs float64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		secs = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		secs = f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		secs = f
	default:
		if tok.Expiry.IsZero() {
			return 0, false
		}
		return time.Until(tok.Expiry), true
	}
	return time.Duration(secs * float64(time.Second)), true
}
