package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/teemow/handoff/internal/drive"
	"github.com/teemow/handoff/internal/handoff"
)

// Folders implements handoff.FolderStorage on Google Drive.
type Folders struct {
	api    DriveAPI
	parent string
}

// NewFolders creates Folders. New folders are created inside parentFolderID,
// or in the Drive root when it is empty.
func NewFolders(api DriveAPI, parentFolderID string) *Folders {
	return &Folders{api: api, parent: parentFolderID}
}

// CreateFolder implements handoff.FolderStorage.
func (f *Folders) CreateFolder(ctx context.Context, name string) (string, error) {
	var parents []string
	if f.parent != "" {
		parents = []string{f.parent}
	}
	info, err := f.api.CreateFolder(ctx, name, parents)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// ResolveFolder implements handoff.FolderStorage. A missing or trashed file,
// or a file that is not a folder, is reported as handoff.ErrFolderNotFound.
func (f *Folders) ResolveFolder(ctx context.Context, folderID string) error {
	info, err := f.api.GetFile(ctx, folderID)
	if errors.Is(err, drive.ErrNotFound) {
		return fmt.Errorf("%w: %s", handoff.ErrFolderNotFound, folderID)
	}
	if err != nil {
		return err
	}
	if info.MimeType != drive.FolderMimeType {
		return fmt.Errorf("%w: %s is a %s", handoff.ErrFolderNotFound, folderID, info.MimeType)
	}
	return nil
}

// GrantEditAccess implements handoff.FolderStorage. Drive does not send its
// own share notification.
func (f *Folders) GrantEditAccess(ctx context.Context, folderID, email string) error {
	_, err := f.api.ShareFile(ctx, folderID, &drive.ShareOptions{
		Type:         "user",
		Role:         "writer",
		EmailAddress: email,
	})
	return err
}

// CreateFile implements handoff.FolderStorage.
func (f *Folders) CreateFile(ctx context.Context, folderID string, blob handoff.Blob) (string, error) {
	info, err := f.api.UploadFile(ctx, blob.Name, bytes.NewReader(blob.Data), &drive.UploadOptions{
		ParentFolders: []string{folderID},
		MimeType:      blob.MimeType,
	})
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// RemoveFolder implements handoff.FolderStorage.
func (f *Folders) RemoveFolder(ctx context.Context, folderID string) error {
	return f.api.TrashFile(ctx, folderID)
}
