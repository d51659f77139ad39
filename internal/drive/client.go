package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	fileFields = "id, name, mimeType, size, modifiedTime, webViewLink, parents"
	listFields = "nextPageToken, files(id, name, mimeType, size, modifiedTime, webViewLink)"
	permFields = "id, emailAddress, role, type"
)

// API is the subset of Google Drive used by the tool handlers.
type API interface {
	ListFiles(ctx context.Context, options *ListOptions) (*FileList, error)
	GetFile(ctx context.Context, fileID string) (*FileInfo, error)
	ExportFile(ctx context.Context, fileID, mimeType string) (io.ReadCloser, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
	CreateFile(ctx context.Context, options *CreateOptions) (*FileInfo, error)
	CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error)
	DeleteFile(ctx context.Context, fileID string) error
	ShareFile(ctx context.Context, fileID string, options *ShareOptions) (*Permission, error)
}

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
}

var _ API = (*Client)(nil)

// NewClient creates a Drive client. Authentication is supplied through opts,
// typically option.WithHTTPClient with a token-bearing client.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{service: driveService}, nil
}

// ListFiles returns one page of files matching options.
func (c *Client) ListFiles(ctx context.Context, options *ListOptions) (*FileList, error) {
	call := c.service.Files.List().
		Context(ctx).
		Fields(listFields)

	if options != nil {
		if options.Query != "" {
			call = call.Q(options.Query)
		}
		if options.PageSize > 0 {
			call = call.PageSize(int64(options.PageSize))
		}
		if options.PageToken != "" {
			call = call.PageToken(options.PageToken)
		}
	}

	fileList, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	result := &FileList{
		Files:         make([]*FileInfo, len(fileList.Files)),
		NextPageToken: fileList.NextPageToken,
	}
	for i, f := range fileList.Files {
		result.Files[i] = convertToFileInfo(f)
	}

	return result, nil
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// ExportFile exports a native document to mimeType. The caller closes the body.
func (c *Client) ExportFile(ctx context.Context, fileID, mimeType string) (io.ReadCloser, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	resp, err := c.service.Files.Export(fileID, mimeType).
		Context(ctx).
		Download()
	if err != nil {
		return nil, fmt.Errorf("failed to export file %s as %s: %w", fileID, mimeType, err)
	}

	return resp.Body, nil
}

// DownloadFile downloads the content of a file. The caller closes the body.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	resp, err := c.service.Files.Get(fileID).
		Context(ctx).
		Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}

	return resp.Body, nil
}

// CreateFile creates a file. A media body is attached only for non-native
// types with content; native types are created empty.
func (c *Client) CreateFile(ctx context.Context, options *CreateOptions) (*FileInfo, error) {
	if options == nil || options.Name == "" {
		return nil, fmt.Errorf("file name is required")
	}

	file := &drive.File{
		Name:     options.Name,
		MimeType: options.MimeType,
	}
	if options.ParentID != "" {
		file.Parents = []string{options.ParentID}
	}

	call := c.service.Files.Create(file).
		Context(ctx).
		Fields(fileFields)

	if options.Content != "" && !IsNative(options.MimeType) {
		call = call.Media(strings.NewReader(options.Content), googleapi.ContentType(options.MimeType))
	}

	driveFile, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// CreateFolder creates a new folder in Google Drive
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		file.Parents = []string{parentID}
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

// DeleteFile permanently deletes a file, bypassing the trash.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("fileID is required")
	}

	if err := c.service.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fileID, err)
	}

	return nil
}

// ShareFile creates a permission on a file to share it
func (c *Client) ShareFile(ctx context.Context, fileID string, options *ShareOptions) (*Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil || options.Role == "" {
		return nil, fmt.Errorf("permission role is required")
	}

	permission := &drive.Permission{
		Type:         options.Type,
		Role:         options.Role,
		EmailAddress: options.EmailAddress,
	}

	call := c.service.Permissions.Create(fileID, permission).
		Context(ctx).
		SendNotificationEmail(options.SendNotificationEmail).
		Fields(permFields)

	// Drive refuses owner grants unless the transfer is explicit.
	if options.Role == "owner" {
		call = call.TransferOwnership(true)
	}

	drivePermission, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to share file: %w", err)
	}

	return convertToPermission(drivePermission), nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	return &FileInfo{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
		WebViewLink:  f.WebViewLink,
		Parents:      f.Parents,
	}
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
