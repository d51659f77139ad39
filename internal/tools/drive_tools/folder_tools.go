package drive_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

func createFolderTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(CreateFolderToolName,
			mcp.WithDescription("Create a new folder in Google Drive"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the folder to create"),
			),
			mcp.WithString("parentFolderId",
				mcp.Description("ID of the parent folder (optional, defaults to root)"),
			),
			mcp.WithDestructiveHintAnnotation(false),
		),
		API:     driveOp(instrumentation.OperationCreate),
		Handler: handleCreateFolder,
	}
}

func handleCreateFolder(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	name, err := args.Require("name")
	if err != nil {
		return common.FailedTo("creating folder", err)
	}

	folder, err := client.Drive.CreateFolder(ctx, name, args.StringOr("parentFolderId", ""))
	if err != nil {
		return common.FailedTo("creating folder", err)
	}

	return common.TextResult(fmt.Sprintf("Folder created successfully!\n\nName: %s\nID: %s\nLink: %s",
		folder.Name, folder.ID, folder.WebViewLink))
}
