// Package workspace implements the handoff capability interfaces on top of
// the Google Workspace clients: Calendar for event listing, Drive for folders
// and files, Docs for placeholder replacement and Gmail for notifications.
package workspace
