package handoff

import "context"

// CalendarSource lists events. Recurring events are expanded into single
// instances and the result is ordered by start time.
type CalendarSource interface {
	ListEvents(ctx context.Context, calendarID string, window Window) ([]CalendarEvent, error)
}

// FolderStorage manages the per-pair folders and the files inside them.
type FolderStorage interface {
	// CreateFolder creates a folder and returns its ID.
	CreateFolder(ctx context.Context, name string) (string, error)

	// ResolveFolder checks that the folder still exists. It returns an error
	// wrapping ErrFolderNotFound when the folder was deleted or trashed.
	ResolveFolder(ctx context.Context, folderID string) error

	// GrantEditAccess gives email write access to the folder.
	GrantEditAccess(ctx context.Context, folderID, email string) error

	// CreateFile stores blob in the folder and returns the new file ID.
	CreateFile(ctx context.Context, folderID string, blob Blob) (string, error)

	// RemoveFolder moves a folder to the trash.
	RemoveFolder(ctx context.Context, folderID string) error
}

// TemplateEngine materializes documents from a template.
type TemplateEngine interface {
	// CopyTemplate copies the template into folderID under name.
	CopyTemplate(ctx context.Context, templateID, folderID, name string) (Document, error)

	// ReplacePlaceholders replaces every occurrence of each token.
	ReplacePlaceholders(ctx context.Context, doc Document, placeholders []Placeholder) error

	// Render exports the document as PDF named name.
	Render(ctx context.Context, doc Document, name string) (Blob, error)

	// Discard trashes the working copy.
	Discard(ctx context.Context, doc Document) error
}

// Notifier sends email.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
