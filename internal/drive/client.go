package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/handoff/internal/google"
	"github.com/teemow/handoff/internal/instrumentation"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// PDFMimeType is the export format for rendered documents
	PDFMimeType = "application/pdf"

	fileFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents, owners, trashed, trashedTime"
)

// ErrNotFound is returned when a file does not exist or is in the trash.
var ErrNotFound = errors.New("drive file not found")

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClient creates a Drive client authorized by provider.
func NewClient(ctx context.Context, provider google.TokenProvider, metrics *instrumentation.Metrics) (*Client, error) {
	httpClient, err := google.NewHTTPClient(ctx, provider)
	if err != nil {
		return nil, err
	}
	return NewClientWithOptions(ctx, provider.Account(), metrics, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Drive client from raw client options.
func NewClientWithOptions(ctx context.Context, account string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Client, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: driveService,
		account: account,
		metrics: metrics,
	}, nil
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// IsNotFound reports whether err is a Google API 404 or 410.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

func wrapNotFound(fileID string, err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, fileID)
	}
	return err
}

// GetFile retrieves metadata for a file. Trashed files are reported as
// ErrNotFound.
func (c *Client) GetFile(ctx context.Context, fileID string) (info *FileInfo, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationGet)
	defer func() { done(err) }()

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, wrapNotFound(fileID, err))
	}
	if file.Trashed {
		return nil, fmt.Errorf("%w: %s is in the trash", ErrNotFound, fileID)
	}

	return convertToFileInfo(file), nil
}

// CreateFolder creates a new folder in Google Drive
func (c *Client) CreateFolder(ctx context.Context, name string, parentFolders []string) (info *FileInfo, err error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationCreate)
	defer func() { done(err) }()

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if len(parentFolders) > 0 {
		file.Parents = parentFolders
	}

	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// UploadFile uploads content as a new file
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, options *UploadOptions) (info *FileInfo, err error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationCreate)
	defer func() { done(err) }()

	file := &drive.File{Name: name}
	if options != nil {
		file.Parents = options.ParentFolders
		file.Description = options.Description
		file.MimeType = options.MimeType
	}

	driveFile, err := c.service.Files.Create(file).
		Context(ctx).
		Media(content, googleapi.ContentType(file.MimeType)).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// CopyFile copies fileID into parentFolder under a new name.
func (c *Client) CopyFile(ctx context.Context, fileID, name, parentFolder string) (info *FileInfo, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationCopy)
	defer func() { done(err) }()

	file := &drive.File{Name: name}
	if parentFolder != "" {
		file.Parents = []string{parentFolder}
	}

	driveFile, err := c.service.Files.Copy(fileID, file).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to copy file %s: %w", fileID, wrapNotFound(fileID, err))
	}

	return convertToFileInfo(driveFile), nil
}

// ExportFile exports a Google Workspace document to mimeType.
func (c *Client) ExportFile(ctx context.Context, fileID, mimeType string) (data []byte, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationExport)
	defer func() { done(err) }()

	resp, err := c.service.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file %s: %w", fileID, wrapNotFound(fileID, err))
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export of %s: %w", fileID, err)
	}
	return data, nil
}

// TrashFile moves a file to the trash.
func (c *Client) TrashFile(ctx context.Context, fileID string) (err error) {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationDelete)
	defer func() { done(err) }()

	_, err = c.service.Files.Update(fileID, &drive.File{Trashed: true}).
		Context(ctx).
		Fields("id, trashed").
		Do()
	if err != nil {
		return fmt.Errorf("failed to trash file %s: %w", fileID, wrapNotFound(fileID, err))
	}
	return nil
}

// ShareFile creates a permission on a file to share it
func (c *Client) ShareFile(ctx context.Context, fileID string, options *ShareOptions) (perm *Permission, err error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil {
		return nil, fmt.Errorf("share options are required")
	}
	if options.Type == "" {
		return nil, fmt.Errorf("permission type is required")
	}
	if options.Role == "" {
		return nil, fmt.Errorf("permission role is required")
	}

	ctx, done := instrumentation.ObserveGoogleAPI(ctx, c.metrics, instrumentation.ServiceDrive, instrumentation.OperationShare)
	defer func() { done(err) }()

	permission := &drive.Permission{
		Type:         options.Type,
		Role:         options.Role,
		EmailAddress: options.EmailAddress,
	}

	drivePermission, err := c.service.Permissions.Create(fileID, permission).
		Context(ctx).
		SendNotificationEmail(options.SendNotificationEmail).
		Fields("id, type, role, emailAddress").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to share file: %w", wrapNotFound(fileID, err))
	}

	return convertToPermission(drivePermission), nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		Trashed:     f.Trashed,
	}

	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		fileInfo.CreatedTime = t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		fileInfo.ModifiedTime = t
	}
	if f.TrashedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.TrashedTime); err == nil {
			fileInfo.TrashedTime = &t
		}
	}

	for _, owner := range f.Owners {
		fileInfo.Owners = append(fileInfo.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return fileInfo
}

// convertToPermission converts a Drive API Permission to our Permission type
func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
	}
}
