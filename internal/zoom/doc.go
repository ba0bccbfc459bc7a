// Package zoom provides a client for the parts of the Zoom REST API v2 needed to
// build attendance reports.
//
// It covers:
//   - Server-to-server OAuth (account_credentials grant) with a file-backed token cache
//   - Resolving the calling user (/users/me)
//   - Listing scheduled meetings in a date range (/users/{id}/meetings)
//   - Fetching a meeting (/meetings/{id})
//   - Listing a past meeting's participants (/report/meetings/{id}/participants)
//
// List endpoints are cursor-paginated via next_page_token and are drained with a
// single generic helper. All requests go through an HTTP client built by
// NewHTTPClient, which retries 500/502/503/504 responses with exponential backoff and
// applies one timeout to every attempt.
//
// Example usage:
//
//	cache := zoom.NewTokenCache(path)
//	auth := zoom.NewAuthenticator(zoom.AuthConfig{Credentials: creds}, cache)
//	token, err := auth.AccessToken(ctx)
//	if err != nil {
//	    return err
//	}
//
//	client := zoom.NewClient()
//	userID, err := client.GetUserID(ctx, token)
//	meetings, err := client.ListMeetings(ctx, token, userID, from, to)
package zoom
