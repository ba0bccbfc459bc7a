package zoom

import (
	"context"
	"fmt"

	"github.com/teemow/zoomreport/internal/instrumentation"
	"github.com/teemow/zoomreport/internal/logging"
)

// ListParticipants returns the participant report of a past meeting in the
// provider's order. Whether a failure here aborts a report is the caller's call.
func (c *Client) ListParticipants(ctx context.Context, token string, meetingID int64) ([]Participant, error) {
	path := fmt.Sprintf("/report/meetings/%d/participants", meetingID)

	participants, err := paginate(ctx, c, instrumentation.OperationListParticipants, path, token, nil,
		func(p *participantPage) ([]Participant, string) {
			return p.Participants, p.NextPageToken
		},
		instrumentation.MeetingIDAttr(meetingID))
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched participants", logging.MeetingID(meetingID), "count", len(participants))
	return participants, nil
}
