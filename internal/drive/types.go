package drive

import "strings"

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// NativeMimePrefix prefixes every Google Workspace native document type.
	// Native documents have no binary content and must be exported.
	NativeMimePrefix = "application/vnd.google-apps"

	// URIScheme is the scheme used when files are referenced as resources.
	URIScheme = "gdrive:///"
)

// exportFormats maps native Workspace types to the format used when reading them.
var exportFormats = map[string]string{
	"application/vnd.google-apps.document":     "text/markdown",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "text/plain",
	"application/vnd.google-apps.drawing":      "image/png",
}

// FileInfo represents metadata about a file or folder in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// Size is the size of the file in bytes (not populated for native documents)
	Size int64 `json:"size,omitempty"`

	// ModifiedTime is the RFC 3339 modification timestamp
	ModifiedTime string `json:"modifiedTime,omitempty"`

	// WebViewLink opens the file in the matching Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`
}

// URI returns the resource URI of the file.
func (f *FileInfo) URI() string {
	return URIScheme + f.ID
}

// IsFolder reports whether the entry is a folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// FileList is a single page of files.
type FileList struct {
	Files         []*FileInfo `json:"files"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// Permission represents access permissions for a file
type Permission struct {
	// ID is the unique identifier for the permission
	ID string `json:"id"`

	// Type is the type of grantee (user, group, domain, anyone)
	Type string `json:"type"`

	// Role is the role granted by this permission
	Role string `json:"role"`

	// EmailAddress of the grantee, empty for domain and anyone grants
	EmailAddress string `json:"emailAddress,omitempty"`
}

// ListOptions contains options for listing files
type ListOptions struct {
	// Query uses the Drive query language, e.g. "name contains 'report'".
	// See https://developers.google.com/drive/api/guides/search-files
	Query string

	// PageSize is the maximum number of files to return (Drive caps it at 1000)
	PageSize int

	// PageToken continues a previous listing
	PageToken string
}

// CreateOptions describes a file to create.
type CreateOptions struct {
	Name     string
	MimeType string

	// Content is uploaded as the media body. It is ignored for native types.
	Content string

	// ParentID places the file inside a folder. Empty means the root folder.
	ParentID string
}

// ShareOptions contains options for sharing a file
type ShareOptions struct {
	// Type is the type of grantee: "user", "group", "domain", or "anyone"
	Type string

	// Role is the role to grant: "reader", "commenter", "writer" or "owner"
	Role string

	// EmailAddress of the grantee, required for user and group grants
	EmailAddress string

	// SendNotificationEmail indicates whether Drive emails the grantee
	SendNotificationEmail bool
}

// IsNative reports whether mimeType is a Google Workspace native type.
func IsNative(mimeType string) bool {
	return strings.HasPrefix(mimeType, NativeMimePrefix)
}

// ExportFormat returns the format a native document is exported to.
func ExportFormat(mimeType string) (string, bool) {
	format, ok := exportFormats[mimeType]
	return format, ok
}

// EscapeQuery escapes a value for use inside a single-quoted query string.
func EscapeQuery(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

// FullTextQuery builds the query used for full-text search over non-trashed files.
func FullTextQuery(text string) string {
	return "fullText contains '" + EscapeQuery(text) + "' and trashed = false"
}
