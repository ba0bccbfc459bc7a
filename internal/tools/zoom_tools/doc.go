// Package zoom_tools exposes Zoom attendance reports as MCP tools.
//
// Tools:
//   - zoom_meeting_summary: attendance report for a date window
//   - zoom_get_meeting: details of one meeting, optionally with attendance
//   - zoom_meeting_attendance: attendance for several meetings, reported per id
package zoom_tools
