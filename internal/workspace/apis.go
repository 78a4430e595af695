package workspace

import (
	"context"
	"io"
	"time"

	"github.com/teemow/handoff/internal/calendar"
	"github.com/teemow/handoff/internal/docs"
	"github.com/teemow/handoff/internal/drive"
	"github.com/teemow/handoff/internal/gmail"
)

// CalendarAPI is the part of calendar.Client used here.
type CalendarAPI interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
}

// DriveAPI is the part of drive.Client used here.
type DriveAPI interface {
	GetFile(ctx context.Context, fileID string) (*drive.FileInfo, error)
	CreateFolder(ctx context.Context, name string, parentFolders []string) (*drive.FileInfo, error)
	UploadFile(ctx context.Context, name string, content io.Reader, options *drive.UploadOptions) (*drive.FileInfo, error)
	CopyFile(ctx context.Context, fileID, name, parentFolder string) (*drive.FileInfo, error)
	ExportFile(ctx context.Context, fileID, mimeType string) ([]byte, error)
	TrashFile(ctx context.Context, fileID string) error
	ShareFile(ctx context.Context, fileID string, options *drive.ShareOptions) (*drive.Permission, error)
}

// DocsAPI is the part of docs.Client used here.
type DocsAPI interface {
	ReplaceAllText(ctx context.Context, documentID string, replacements []docs.Replacement) (int64, error)
}

// GmailAPI is the part of gmail.Client used here.
type GmailAPI interface {
	SendEmail(ctx context.Context, msg *gmail.EmailMessage) (string, error)
}

var (
	_ CalendarAPI = (*calendar.Client)(nil)
	_ DriveAPI    = (*drive.Client)(nil)
	_ DocsAPI     = (*docs.Client)(nil)
	_ GmailAPI    = (*gmail.Client)(nil)
)
