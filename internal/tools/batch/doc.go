// Package batch provides helpers for tools that act on several meetings in one call.
//
// This package includes helpers for:
//   - Parsing meeting id parameters that accept a single id or a list of ids
//   - Running an operation per id while collecting partial failures
//   - Formatting batch results in a consistent structure
package batch
