package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/handoff/internal/calendar"
	"github.com/teemow/handoff/internal/docs"
	"github.com/teemow/handoff/internal/drive"
	"github.com/teemow/handoff/internal/gmail"
	"github.com/teemow/handoff/internal/handoff"
)

type fakeCalendarAPI struct {
	events []calendar.EventSummary
	err    error
	gotMin time.Time
	gotMax time.Time
}

func (f *fakeCalendarAPI) ListEvents(_ context.Context, _ string, timeMin, timeMax time.Time) ([]calendar.EventSummary, error) {
	f.gotMin, f.gotMax = timeMin, timeMax
	return f.events, f.err
}

type fakeDriveAPI struct {
	files    map[string]*drive.FileInfo
	getErr   error
	shared   []drive.ShareOptions
	uploaded map[string][]byte
	parents  map[string][]string
	trashed  []string
	exported map[string][]byte
	nextID   int
}

func newFakeDriveAPI() *fakeDriveAPI {
	return &fakeDriveAPI{
		files:    make(map[string]*drive.FileInfo),
		uploaded: make(map[string][]byte),
		parents:  make(map[string][]string),
		exported: make(map[string][]byte),
	}
}

func (f *fakeDriveAPI) id() string {
	f.nextID++
	return fmt.Sprintf("id%d", f.nextID)
}

func (f *fakeDriveAPI) GetFile(_ context.Context, fileID string) (*drive.FileInfo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	info, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, drive.ErrNotFound)
	}
	return info, nil
}

func (f *fakeDriveAPI) CreateFolder(_ context.Context, name string, parents []string) (*drive.FileInfo, error) {
	info := &drive.FileInfo{ID: f.id(), Name: name, MimeType: drive.FolderMimeType, Parents: parents}
	f.files[info.ID] = info
	return info, nil
}

func (f *fakeDriveAPI) UploadFile(_ context.Context, name string, content io.Reader, options *drive.UploadOptions) (*drive.FileInfo, error) {
	data, _ := io.ReadAll(content)
	info := &drive.FileInfo{ID: f.id(), Name: name, MimeType: options.MimeType, Parents: options.ParentFolders}
	f.files[info.ID] = info
	f.uploaded[info.ID] = data
	return info, nil
}

func (f *fakeDriveAPI) CopyFile(_ context.Context, fileID, name, parent string) (*drive.FileInfo, error) {
	info := &drive.FileInfo{ID: f.id(), Name: name, Parents: []string{parent}}
	f.parents[info.ID] = info.Parents
	return info, nil
}

func (f *fakeDriveAPI) ExportFile(_ context.Context, fileID, mimeType string) ([]byte, error) {
	return f.exported[fileID], nil
}

func (f *fakeDriveAPI) TrashFile(_ context.Context, fileID string) error {
	f.trashed = append(f.trashed, fileID)
	return nil
}

func (f *fakeDriveAPI) ShareFile(_ context.Context, fileID string, options *drive.ShareOptions) (*drive.Permission, error) {
	f.shared = append(f.shared, *options)
	return &drive.Permission{ID: "perm", Role: options.Role, EmailAddress: options.EmailAddress}, nil
}

type fakeDocsAPI struct {
	got []docs.Replacement
}

func (f *fakeDocsAPI) ReplaceAllText(_ context.Context, _ string, r []docs.Replacement) (int64, error) {
	f.got = r
	return int64(len(r)), nil
}

type fakeGmailAPI struct {
	sent []*gmail.EmailMessage
	err  error
}

func (f *fakeGmailAPI) SendEmail(_ context.Context, msg *gmail.EmailMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg", nil
}

func TestCalendar_ListEvents(t *testing.T) {
	start := time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)
	api := &fakeCalendarAPI{events: []calendar.EventSummary{
		{
			ID:        "ev1",
			Summary:   "Intake",
			Organizer: "alice@example.com",
			Start:     start,
			Attendees: []calendar.AttendeeInfo{
				{Email: "room@resource.example.com", Resource: true},
				{Email: "bob@example.com"},
			},
		},
		{ID: "ev2", Status: "cancelled", Organizer: "alice@example.com"},
	}}

	window := handoff.NewWindow(start, 24*time.Hour)
	events, err := NewCalendar(api).ListEvents(context.Background(), "primary", window)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, handoff.CalendarEvent{
		ID:             "ev1",
		Summary:        "Intake",
		OrganizerEmail: "alice@example.com",
		AttendeeEmails: []string{"bob@example.com"},
		Start:          start,
	}, events[0])
	assert.Equal(t, window.Start, api.gotMin)
	assert.Equal(t, window.End, api.gotMax)
}

func TestCalendar_ResourcesNeverBecomeParticipantB(t *testing.T) {
	start := time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)
	api := &fakeCalendarAPI{events: []calendar.EventSummary{
		{
			ID:        "ev1",
			Organizer: "alice@example.com",
			Start:     start,
			Attendees: []calendar.AttendeeInfo{
				{Email: "alice@example.com"},
				{Email: "room@resource.example.com", Resource: true},
				{Email: "carol@example.com"},
				{Email: "bob@example.com"},
			},
		},
		{
			ID:        "ev2",
			Organizer: "alice@example.com",
			Start:     start,
			Attendees: []calendar.AttendeeInfo{
				{Email: "alice@example.com"},
				{Email: "room@resource.example.com", Resource: true},
			},
		},
	}}

	events, err := NewCalendar(api).ListEvents(context.Background(), "primary", handoff.NewWindow(start, 24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)

	// The first non-organizer, non-resource attendee in list order wins.
	pair, err := handoff.ResolvePair(events[0])
	require.NoError(t, err)
	assert.Equal(t, handoff.ParticipantPair{ParticipantA: "alice@example.com", ParticipantB: "carol@example.com"}, pair)

	// A room alone does not make a pair.
	_, err = handoff.ResolvePair(events[1])
	assert.ErrorIs(t, err, handoff.ErrUnresolvedParticipant)
	assert.True(t, handoff.IsSkip(err))
}

func TestCalendar_ListEventsError(t *testing.T) {
	api := &fakeCalendarAPI{err: errors.New("quota")}
	_, err := NewCalendar(api).ListEvents(context.Background(), "primary", handoff.Window{})
	assert.Error(t, err)
}

func TestFolders_CreateAndResolve(t *testing.T) {
	api := newFakeDriveAPI()
	folders := NewFolders(api, "root-folder")
	ctx := context.Background()

	id, err := folders.CreateFolder(ctx, "alice bob Handoff")
	require.NoError(t, err)
	assert.Equal(t, []string{"root-folder"}, api.files[id].Parents)

	assert.NoError(t, folders.ResolveFolder(ctx, id))

	err = folders.ResolveFolder(ctx, "missing")
	assert.ErrorIs(t, err, handoff.ErrFolderNotFound)

	api.files["doc"] = &drive.FileInfo{ID: "doc", MimeType: "application/pdf"}
	assert.ErrorIs(t, folders.ResolveFolder(ctx, "doc"), handoff.ErrFolderNotFound)

	api.getErr = errors.New("backend error")
	err = folders.ResolveFolder(ctx, id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, handoff.ErrFolderNotFound)
}

func TestFolders_RootWhenNoParent(t *testing.T) {
	api := newFakeDriveAPI()
	id, err := NewFolders(api, "").CreateFolder(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, api.files[id].Parents)
}

func TestFolders_GrantCreateRemove(t *testing.T) {
	api := newFakeDriveAPI()
	folders := NewFolders(api, "")
	ctx := context.Background()

	require.NoError(t, folders.GrantEditAccess(ctx, "f1", "alice@example.com"))
	require.Len(t, api.shared, 1)
	assert.Equal(t, drive.ShareOptions{Type: "user", Role: "writer", EmailAddress: "alice@example.com"}, api.shared[0])

	fileID, err := folders.CreateFile(ctx, "f1", handoff.Blob{Name: "a.pdf", MimeType: "application/pdf", Data: []byte("pdf")})
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), api.uploaded[fileID])
	assert.Equal(t, []string{"f1"}, api.files[fileID].Parents)

	require.NoError(t, folders.RemoveFolder(ctx, "f1"))
	assert.Equal(t, []string{"f1"}, api.trashed)
}

func TestTemplates(t *testing.T) {
	driveAPI := newFakeDriveAPI()
	docsAPI := &fakeDocsAPI{}
	tpl := NewTemplates(driveAPI, docsAPI)
	ctx := context.Background()

	doc, err := tpl.CopyTemplate(ctx, "tpl", "f1", "Submission bob@example.com 2025-02-04T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "Submission bob@example.com 2025-02-04T10:00:00Z", doc.Name)
	assert.Equal(t, []string{"f1"}, driveAPI.parents[doc.ID])

	require.NoError(t, tpl.ReplacePlaceholders(ctx, doc, []handoff.Placeholder{
		{Token: "{Email}", Value: "bob@example.com"},
		{Token: "{Question1}", Value: ""},
	}))
	assert.Equal(t, []docs.Replacement{
		{Find: "{Email}", Replace: "bob@example.com"},
		{Find: "{Question1}", Replace: ""},
	}, docsAPI.got)

	driveAPI.exported[doc.ID] = []byte("%PDF")
	blob, err := tpl.Render(ctx, doc, "Form Submission - bob@example.com.pdf")
	require.NoError(t, err)
	assert.Equal(t, handoff.Blob{Name: "Form Submission - bob@example.com.pdf", MimeType: drive.PDFMimeType, Data: []byte("%PDF")}, blob)

	require.NoError(t, tpl.Discard(ctx, doc))
	assert.Equal(t, []string{doc.ID}, driveAPI.trashed)
}

func TestMailer_Send(t *testing.T) {
	api := &fakeGmailAPI{}
	err := NewMailer(api).Send(context.Background(), handoff.Message{
		To:          "bob@example.com",
		Subject:     handoff.SubmissionSubject,
		Body:        handoff.SubmissionBody,
		Attachments: []handoff.Blob{{Name: "a.pdf", MimeType: "application/pdf", Data: []byte("x")}},
	})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, api.sent[0].To)
	assert.Equal(t, handoff.SubmissionSubject, api.sent[0].Subject)
	assert.Equal(t, []gmail.Attachment{{Filename: "a.pdf", MimeType: "application/pdf", Data: []byte("x")}}, api.sent[0].Attachments)

	api.err = errors.New("quota")
	assert.Error(t, NewMailer(api).Send(context.Background(), handoff.Message{To: "x"}))
}
