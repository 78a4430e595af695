// Package handoff implements the two-step handoff workflow.
//
// A calendar scan lists events in a time window, derives a Participant A
// (organizer) and Participant B (first other attendee) for each event, and
// provisions one shared Drive folder per Participant B. A form submission
// from Participant B is then rendered from a document template into a PDF,
// filed in that folder and emailed to both participants.
//
// The workflow is expressed over narrow capability interfaces
// (CalendarSource, FolderStorage, TemplateEngine, Notifier) and the
// identity.Store, so it can run against Google Workspace (see
// internal/workspace) or against in-memory fakes in tests.
//
// Components:
//   - ResolvePair: event to participant pair, or a skip reason
//   - Provisioner: ensures exactly one live folder per Participant B
//   - Processor: turns a submission into a filed PDF and notifications
//   - Scanner: runs ResolvePair and Provisioner over every event of a window,
//     isolating failures per event
//   - Service: serializes scans and submissions for long-running processes
package handoff
