package google

import (
	calendar "google.golang.org/api/calendar/v3"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes are the scopes requested for every token.
//
// The scopes provide access to:
//   - Calendar: read events
//   - Drive: create folders, share them, copy, export and trash files
//   - Docs: edit the working copy of the template
//   - Gmail: send notifications
var DefaultOAuthScopes = []string{
	calendar.CalendarReadonlyScope,
	drive.DriveScope,
	docs.DocumentsScope,
	gmail.GmailSendScope,
}
