package handoff

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teemow/handoff/internal/identity"
)

type fakeFolder struct {
	name    string
	editors []string
	trashed bool
	files   []Blob
}

type fakeStorage struct {
	mu      sync.Mutex
	nextID  int
	folders map[string]*fakeFolder
	order   []string

	resolveErr    error
	createErr     error
	grantErr      error
	createFileErr error
	removeErr     error

	createCalls  int
	resolveCalls int
	removed      []string

	// afterCreate runs once a folder exists, e.g. to cancel the caller.
	afterCreate func()
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{folders: make(map[string]*fakeFolder)}
}

func (f *fakeStorage) CreateFolder(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.createCalls++
	if f.createErr != nil {
		f.mu.Unlock()
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("folder-%d", f.nextID)
	f.folders[id] = &fakeFolder{name: name}
	f.order = append(f.order, id)
	f.mu.Unlock()

	if f.afterCreate != nil {
		f.afterCreate()
	}
	return id, nil
}

func (f *fakeStorage) ResolveFolder(ctx context.Context, folderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	if f.resolveErr != nil {
		return f.resolveErr
	}
	folder, ok := f.folders[folderID]
	if !ok || folder.trashed {
		return fmt.Errorf("folder %s: %w", folderID, ErrFolderNotFound)
	}
	return nil
}

func (f *fakeStorage) GrantEditAccess(ctx context.Context, folderID, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return f.grantErr
	}
	f.folders[folderID].editors = append(f.folders[folderID].editors, email)
	return nil
}

func (f *fakeStorage) CreateFile(ctx context.Context, folderID string, blob Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFileErr != nil {
		return "", f.createFileErr
	}
	folder := f.folders[folderID]
	folder.files = append(folder.files, blob)
	return fmt.Sprintf("%s/file-%d", folderID, len(folder.files)), nil
}

func (f *fakeStorage) RemoveFolder(ctx context.Context, folderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	if folder, ok := f.folders[folderID]; ok {
		folder.trashed = true
	}
	f.removed = append(f.removed, folderID)
	return nil
}

// deleteExternally simulates a user deleting a folder in Drive.
func (f *fakeStorage) deleteExternally(folderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.folders, folderID)
}

func (f *fakeStorage) liveFolders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var live []string
	for _, id := range f.order {
		if folder, ok := f.folders[id]; ok && !folder.trashed {
			live = append(live, id)
		}
	}
	return live
}

func (f *fakeStorage) folder(id string) *fakeFolder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.folders[id]
}

type fakeDoc struct {
	templateID   string
	folderID     string
	name         string
	placeholders []Placeholder
	discarded    bool
}

type fakeTemplates struct {
	docs   map[string]*fakeDoc
	nextID int

	copyErr    error
	replaceErr error
	renderErr  error
	discardErr error

	// afterCopy runs once the working copy exists.
	afterCopy func()
}

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{docs: make(map[string]*fakeDoc)}
}

func (f *fakeTemplates) CopyTemplate(_ context.Context, templateID, folderID, name string) (Document, error) {
	if f.copyErr != nil {
		return Document{}, f.copyErr
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.docs[id] = &fakeDoc{templateID: templateID, folderID: folderID, name: name}
	if f.afterCopy != nil {
		f.afterCopy()
	}
	return Document{ID: id, Name: name}, nil
}

func (f *fakeTemplates) ReplacePlaceholders(ctx context.Context, doc Document, placeholders []Placeholder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.docs[doc.ID].placeholders = placeholders
	return nil
}

func (f *fakeTemplates) Render(_ context.Context, doc Document, name string) (Blob, error) {
	if f.renderErr != nil {
		return Blob{}, f.renderErr
	}
	return Blob{Name: name, MimeType: PDFMimeType, Data: []byte("%PDF-" + doc.ID)}, nil
}

func (f *fakeTemplates) Discard(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.discardErr != nil {
		return f.discardErr
	}
	f.docs[doc.ID].discarded = true
	return nil
}

func (f *fakeTemplates) only() *fakeDoc {
	for _, d := range f.docs {
		return d
	}
	return nil
}

type fakeNotifier struct {
	sent   []Message
	err    error
	failTo string
}

func (f *fakeNotifier) Send(_ context.Context, msg Message) error {
	if f.err != nil && (f.failTo == "" || f.failTo == msg.To) {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeCalendar struct {
	events []CalendarEvent
	err    error
	calls  int
	lastID string
	lastW  Window
}

func (f *fakeCalendar) ListEvents(_ context.Context, calendarID string, window Window) ([]CalendarEvent, error) {
	f.calls++
	f.lastID = calendarID
	f.lastW = window
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

// countingBackend counts writes so tests can assert that no-ops do not write.
type countingBackend struct {
	*identity.MemoryBackend
	sets    int
	deletes int
	getErr  error
}

func newCountingBackend() *countingBackend {
	return &countingBackend{MemoryBackend: identity.NewMemoryBackend()}
}

func (c *countingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	return c.MemoryBackend.Get(ctx, key)
}

func (c *countingBackend) Set(ctx context.Context, entries ...identity.Entry) error {
	c.sets += len(entries)
	return c.MemoryBackend.Set(ctx, entries...)
}

func (c *countingBackend) Delete(ctx context.Context, keys ...string) error {
	c.deletes += len(keys)
	return c.MemoryBackend.Delete(ctx, keys...)
}

var fixedNow = time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
