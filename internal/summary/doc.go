// Package summary turns Zoom meetings and their participant reports into an
// attendance report.
//
// A Summarizer joins each meeting with its participant list and computes
// per-participant attendance in whole minutes. A Reporter drives a complete run:
// it obtains a token, resolves the calling user, lists the user's meetings in a
// Window and hands them to the Summarizer.
//
// Failure policy: listing meetings is fatal, listing a single meeting's
// participants is not. A meeting whose participants could not be fetched is
// kept with an empty participant list and its ParticipantsError set.
// Unparseable timestamps are always fatal.
package summary
