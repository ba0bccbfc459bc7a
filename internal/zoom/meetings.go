package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
)

// DateLayout is the format of the from/to query parameters.
const DateLayout = "2006-01-02"

// GetUserID resolves the id of the user the token belongs to.
func (c *Client) GetUserID(ctx context.Context, token string) (string, error) {
	status, body, err := c.get(ctx, instrumentation.OperationGetUser, "/users/me", token, nil)
	if err != nil {
		return "", &IdentityError{StatusCode: status, Err: err}
	}
	if !isSuccess(status) {
		return "", &IdentityError{StatusCode: status, Body: logging.Truncate(string(body), maxErrorBody)}
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return "", &IdentityError{StatusCode: status, Err: fmt.Errorf("failed to decode user: %w", err)}
	}
	if user.ID == "" {
		return "", &IdentityError{StatusCode: status, Body: "response has no id"}
	}

	c.logger.Info("obtained user ID", logging.UserID(user.ID))
	return user.ID, nil
}

// ListMeetings returns the user's scheduled meetings between from and to
// (inclusive dates), in the provider's order.
func (c *Client) ListMeetings(ctx context.Context, token, userID string, from, to time.Time) ([]Meeting, error) {
	params := url.Values{}
	params.Set("type", "scheduled")
	params.Set("from", from.Format(DateLayout))
	params.Set("to", to.Format(DateLayout))

	path := "/users/" + url.PathEscape(userID) + "/meetings"
	meetings, err := paginate(ctx, c, instrumentation.OperationListMeetings, path, token, params,
		func(p *meetingPage) ([]Meeting, string) {
			return p.Meetings, p.NextPageToken
		})
	if err != nil {
		c.logger.Error("failed to fetch meetings", logging.Err(err))
		return nil, err
	}

	c.logger.Info("fetched meetings", "count", len(meetings),
		"from", from.Format(DateLayout), "to", to.Format(DateLayout))
	return meetings, nil
}

// GetMeeting returns the details of a single meeting.
func (c *Client) GetMeeting(ctx context.Context, token string, meetingID int64) (*Meeting, error) {
	op := instrumentation.OperationGetMeeting
	path := "/meetings/" + strconv.FormatInt(meetingID, 10)

	status, body, err := c.get(ctx, op, path, token, nil, instrumentation.MeetingIDAttr(meetingID))
	if err != nil {
		return nil, &FetchError{Op: op, StatusCode: status, Err: err}
	}
	if !isSuccess(status) {
		return nil, &FetchError{Op: op, StatusCode: status, Body: logging.Truncate(string(body), maxErrorBody)}
	}

	var m Meeting
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, &FetchError{Op: op, StatusCode: status, Err: fmt.Errorf("failed to decode meeting: %w", err)}
	}
	return &m, nil
}
