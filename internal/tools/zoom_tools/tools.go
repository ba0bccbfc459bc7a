package zoom_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/zoomreport/internal/server"
	"github.com/teemow/zoomreport/internal/summary"
	"github.com/teemow/zoomreport/internal/tools/batch"
	"github.com/teemow/zoomreport/internal/tools/common"
	"github.com/teemow/zoomreport/internal/zoom"
)

const (
	ToolMeetingSummary = "zoom_meeting_summary"
	ToolGetMeeting     = "zoom_get_meeting"
	ToolAttendance     = "zoom_meeting_attendance"

	// maxDays bounds the window a single tool call may request.
	maxDays = 90
)

// RegisterZoomTools registers all Zoom tools with the MCP server.
func RegisterZoomTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	summaryTool := mcp.NewTool(ToolMeetingSummary,
		mcp.WithDescription("Summarize attendance of the authenticated user's scheduled Zoom meetings over a date window. Returns JSON with each meeting's topic, start and end time, and every participant session with its duration in whole minutes."),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Length of the trailing window in days (default: configured days, max %d). Ignored when 'from' is given.", maxDays)),
		),
		mcp.WithString("from",
			mcp.Description("Start date YYYY-MM-DD (optional)"),
		),
		mcp.WithString("to",
			mcp.Description("End date YYYY-MM-DD (optional, default: today)"),
		),
	)
	s.AddTool(summaryTool, common.InstrumentedToolHandler(ToolMeetingSummary, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMeetingSummary(ctx, request, sc, time.Now())
		}))

	getMeetingTool := mcp.NewTool(ToolGetMeeting,
		mcp.WithDescription("Get details of a single Zoom meeting by its numeric id"),
		mcp.WithNumber("meeting_id",
			mcp.Required(),
			mcp.Description("The numeric meeting id (e.g., 85746065432)"),
		),
		mcp.WithBoolean("include_participants",
			mcp.Description("Also fetch the participant report and attendance durations (default: false)"),
		),
	)
	s.AddTool(getMeetingTool, common.InstrumentedToolHandler(ToolGetMeeting, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMeeting(ctx, request, sc)
		}))

	attendanceTool := mcp.NewTool(ToolAttendance,
		mcp.WithDescription("Summarize attendance for one or more past Zoom meetings by id. Each meeting is reported separately so one unknown id does not fail the others."),
		mcp.WithString("meeting_ids",
			mcp.Required(),
			mcp.Description("Meeting id or array of meeting ids to summarize"),
		),
	)
	s.AddTool(attendanceTool, common.InstrumentedToolHandler(ToolAttendance, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAttendance(ctx, request, sc)
		}))

	return nil
}

func handleMeetingSummary(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, now time.Time) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	days := sc.Config().Days
	n, ok, err := common.GetInt64Arg(args, "days")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		if n < 1 || n > maxDays {
			return mcp.NewToolResultError(fmt.Sprintf("days must be between 1 and %d", maxDays)), nil
		}
		days = int(n)
	}

	window, err := summary.ParseWindow(now, days,
		common.GetStringArg(args, "from", ""),
		common.GetStringArg(args, "to", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := sc.Reporter(nil, nil).Generate(ctx, window)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate meeting summary: %v", err)), nil
	}

	return jsonResult(report)
}

func handleGetMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	meetingID, ok, err := common.GetInt64Arg(args, "meeting_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok || meetingID <= 0 {
		return mcp.NewToolResultError("meeting_id is required"), nil
	}

	token, err := sc.Authenticator().AccessToken(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to authenticate: %v", err)), nil
	}

	meeting, err := sc.Client().GetMeeting(ctx, token, meetingID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get meeting: %v", err)), nil
	}

	if !common.GetBoolArg(args, "include_participants", false) {
		return jsonResult(meeting)
	}

	summarizer := summary.NewSummarizer(sc.Client(),
		summary.WithLogger(sc.Logger()),
		summary.WithMetrics(sc.Metrics()))
	summaries, err := summarizer.Summarize(ctx, token, []zoom.Meeting{*meeting})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to summarize meeting: %v", err)), nil
	}
	return jsonResult(summaries[0])
}

func handleAttendance(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	ids, err := batch.ParseMeetingIDs(args["meeting_ids"], "meeting_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	token, err := sc.Authenticator().AccessToken(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to authenticate: %v", err)), nil
	}

	summarizer := summary.NewSummarizer(sc.Client(),
		summary.WithLogger(sc.Logger()),
		summary.WithMetrics(sc.Metrics()))

	results := batch.ProcessBatch(ctx, ids, func(ctx context.Context, id int64) (any, error) {
		meeting, err := sc.Client().GetMeeting(ctx, token, id)
		if err != nil {
			return nil, err
		}
		summaries, err := summarizer.Summarize(ctx, token, []zoom.Meeting{*meeting})
		if err != nil {
			return nil, err
		}
		return summaries[0], nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
