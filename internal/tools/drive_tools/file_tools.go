package drive_tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// MaxContentBytes caps the content returned by gdrive_read_file.
	MaxContentBytes = 1 << 20
)

func searchTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(SearchToolName,
			mcp.WithDescription("Search for files in Google Drive by full text"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Text to search for in file names and contents"),
			),
			mcp.WithNumber("pageSize",
				mcp.Description("Maximum number of files to return (default: 10, max: 100)"),
				mcp.DefaultNumber(defaultPageSize),
				mcp.Min(1),
				mcp.Max(maxPageSize),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		API:     driveOp(instrumentation.OperationSearch),
		Handler: handleSearch,
	}
}

func handleSearch(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	query, err := args.Require("query")
	if err != nil {
		return common.FailedTo("searching files", err)
	}

	pageSize := args.IntOr("pageSize", defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	list, err := client.Drive.ListFiles(ctx, &drive.ListOptions{
		Query:    drive.FullTextQuery(query),
		PageSize: pageSize,
	})
	if err != nil {
		return common.FailedTo("searching files", err)
	}

	if len(list.Files) == 0 {
		return common.TextResult(fmt.Sprintf("No files found matching %q", query))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d files:\n", len(list.Files))
	for _, f := range list.Files {
		fmt.Fprintf(&b, "%s (%s) [id: %s]\n", f.Name, f.MimeType, f.ID)
	}
	return common.TextResult(strings.TrimSuffix(b.String(), "\n"))
}

func readFileTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(ReadFileToolName,
			mcp.WithDescription("Read the contents of a file from Google Drive. Google Docs are exported as Markdown, Sheets as CSV, Slides as plain text and Drawings as PNG."),
			mcp.WithString("fileId",
				mcp.Required(),
				mcp.Description("ID of the file to read"),
			),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		API:     driveOp(instrumentation.OperationGet),
		Handler: handleReadFile,
	}
}

func handleReadFile(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	fileID, err := args.Require("fileId")
	if err != nil {
		return common.FailedTo("reading file", err)
	}

	file, err := client.Drive.GetFile(ctx, fileID)
	if err != nil {
		return common.FailedTo("reading file", err)
	}
	if file.IsFolder() {
		return common.Errorf("Error reading file: %s is a folder", file.Name)
	}

	mimeType := file.MimeType
	var body io.ReadCloser
	if drive.IsNative(file.MimeType) {
		format, ok := drive.ExportFormat(file.MimeType)
		if !ok {
			return common.Errorf("Error reading file: unsupported Google Workspace type %s", file.MimeType)
		}
		mimeType = format
		body, err = client.Drive.ExportFile(ctx, fileID, format)
	} else {
		body, err = client.Drive.DownloadFile(ctx, fileID)
	}
	if err != nil {
		return common.FailedTo("reading file", err)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxContentBytes+1))
	if err != nil {
		return common.FailedTo("reading file", err)
	}
	truncated := len(data) > MaxContentBytes
	if truncated {
		data = data[:MaxContentBytes]
	}

	var content string
	if isText(mimeType) {
		content = strings.ToValidUTF8(string(data), "�")
	} else {
		content = base64.StdEncoding.EncodeToString(data)
	}
	if truncated {
		content += fmt.Sprintf("\n\n[content truncated at %d bytes]", MaxContentBytes)
	}

	return common.TextResult(fmt.Sprintf("Contents of %s (%s):\n\n%s", file.Name, mimeType, content))
}

// isText reports whether content of mimeType can be returned verbatim.
func isText(mimeType string) bool {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))

	if strings.HasPrefix(mimeType, "text/") ||
		strings.HasSuffix(mimeType, "+json") ||
		strings.HasSuffix(mimeType, "+xml") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/javascript",
		"application/x-yaml", "application/yaml", "image/svg+xml":
		return true
	}
	return false
}

func createFileTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(CreateFileToolName,
			mcp.WithDescription("Create a new file in Google Drive"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the file to create"),
			),
			mcp.WithString("mimeType",
				mcp.Required(),
				mcp.Description("MIME type of the file (e.g., 'text/plain', 'application/vnd.google-apps.document')"),
			),
			mcp.WithString("content",
				mcp.Description("Content of the file (for text files)"),
			),
			mcp.WithString("parentFolderId",
				mcp.Description("ID of the parent folder (optional, defaults to root)"),
			),
			mcp.WithDestructiveHintAnnotation(false),
		),
		API:     driveOp(instrumentation.OperationCreate),
		Handler: handleCreateFile,
	}
}

func handleCreateFile(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	name, err := args.Require("name")
	if err != nil {
		return common.FailedTo("creating file", err)
	}
	mimeType, err := args.Require("mimeType")
	if err != nil {
		return common.FailedTo("creating file", err)
	}

	file, err := client.Drive.CreateFile(ctx, &drive.CreateOptions{
		Name:     name,
		MimeType: mimeType,
		Content:  args.StringOr("content", ""),
		ParentID: args.StringOr("parentFolderId", ""),
	})
	if err != nil {
		return common.FailedTo("creating file", err)
	}

	return common.TextResult(fmt.Sprintf("File created successfully!\n\nName: %s\nID: %s\nType: %s\nLink: %s",
		file.Name, file.ID, file.MimeType, file.WebViewLink))
}

func deleteFileTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(DeleteFileToolName,
			mcp.WithDescription("Delete a file from Google Drive"),
			mcp.WithString("fileId",
				mcp.Required(),
				mcp.Description("ID of the file to delete"),
			),
			mcp.WithDestructiveHintAnnotation(true),
		),
		API:     driveOp(instrumentation.OperationDelete),
		Handler: handleDeleteFile,
	}
}

func handleDeleteFile(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	fileID, err := args.Require("fileId")
	if err != nil {
		return common.FailedTo("deleting file", err)
	}

	if err := client.Drive.DeleteFile(ctx, fileID); err != nil {
		return common.FailedTo("deleting file", err)
	}

	return common.TextResult(fmt.Sprintf("File with ID %s has been deleted successfully.", fileID))
}
