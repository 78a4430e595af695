// Package handoff_tools exposes the handoff workflow as MCP tools.
//
// Read tools (always registered):
//   - handoff_lookup_participant: folder record of one or more participants
//   - handoff_list_mappings: every recorded participant
//
// Write tools (omitted in read-only mode):
//   - handoff_scan_calendar: provision folders for the events in a window
//   - handoff_process_submission: render, file and email one form submission
//   - handoff_forget_participant: drop the folder record of participants
//
// Every handler is wrapped with common.InstrumentedToolHandler.
package handoff_tools
