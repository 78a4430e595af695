package workspace

import (
	"context"

	"github.com/teemow/handoff/internal/calendar"
	"github.com/teemow/handoff/internal/docs"
	"github.com/teemow/handoff/internal/drive"
	"github.com/teemow/handoff/internal/gmail"
	"github.com/teemow/handoff/internal/google"
	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/instrumentation"
)

// Config configures the Google Workspace collaborators.
type Config struct {
	// ParentFolderID is the Drive folder new participant folders go into.
	ParentFolderID string
}

// Workspace bundles the collaborators of the handoff workflow.
type Workspace struct {
	Calendar  handoff.CalendarSource
	Storage   handoff.FolderStorage
	Templates handoff.TemplateEngine
	Notifier  handoff.Notifier
}

// New builds the Google API clients for provider and wraps them.
func New(ctx context.Context, provider google.TokenProvider, metrics *instrumentation.Metrics, cfg Config) (*Workspace, error) {
	calClient, err := calendar.NewClient(ctx, provider, metrics)
	if err != nil {
		return nil, err
	}
	driveClient, err := drive.NewClient(ctx, provider, metrics)
	if err != nil {
		return nil, err
	}
	docsClient, err := docs.NewClient(ctx, provider, metrics)
	if err != nil {
		return nil, err
	}
	gmailClient, err := gmail.NewClient(ctx, provider, metrics)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Calendar:  NewCalendar(calClient),
		Storage:   NewFolders(driveClient, cfg.ParentFolderID),
		Templates: NewTemplates(driveClient, docsClient),
		Notifier:  NewMailer(gmailClient),
	}, nil
}
