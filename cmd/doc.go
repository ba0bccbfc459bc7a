// Package cmd implements the command-line interface for zoomreport.
//
// This package provides the following commands:
//   - summary: Print an attendance report for the user's recent Zoom meetings
//   - token: Acquire or clear the cached access token
//   - serve: Start the MCP server to provide the report to AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The summary command is the default command when no subcommand is specified.
package cmd
