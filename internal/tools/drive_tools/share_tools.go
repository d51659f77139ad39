package drive_tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

var (
	shareRoles = []string{"reader", "writer", "owner", "commenter"}
	shareTypes = []string{"user", "group", "domain", "anyone"}
)

func shareFileTool() common.Tool {
	return common.Tool{
		Definition: mcp.NewTool(ShareFileToolName,
			mcp.WithDescription("Share a file with specific permissions in Google Drive"),
			mcp.WithString("fileId",
				mcp.Required(),
				mcp.Description("ID of the file to share"),
			),
			mcp.WithString("emailAddress",
				mcp.Required(),
				mcp.Description("Email address of the person to share with"),
			),
			mcp.WithString("role",
				mcp.Required(),
				mcp.Description("Role to assign (reader, writer, owner, commenter)"),
				mcp.Enum(shareRoles...),
			),
			mcp.WithString("type",
				mcp.Description("Type of permission (user, group, domain, anyone)"),
				mcp.Enum(shareTypes...),
				mcp.DefaultString("user"),
			),
			mcp.WithBoolean("sendNotificationEmail",
				mcp.Description("Whether to send notification email"),
				mcp.DefaultBool(true),
			),
			mcp.WithDestructiveHintAnnotation(false),
		),
		API:     driveOp(instrumentation.OperationShare),
		Handler: handleShareFile,
	}
}

func handleShareFile(ctx context.Context, client *google.Client, args common.Arguments) common.Result {
	fileID, err := args.Require("fileId")
	if err != nil {
		return common.FailedTo("sharing file", err)
	}
	email, err := args.Require("emailAddress")
	if err != nil {
		return common.FailedTo("sharing file", err)
	}
	role, err := args.Require("role")
	if err != nil {
		return common.FailedTo("sharing file", err)
	}
	if !slices.Contains(shareRoles, role) {
		return common.Errorf("Error sharing file: invalid role %q", role)
	}
	grantee := args.StringOr("type", "user")
	if !slices.Contains(shareTypes, grantee) {
		return common.Errorf("Error sharing file: invalid type %q", grantee)
	}

	perm, err := client.Drive.ShareFile(ctx, fileID, &drive.ShareOptions{
		Type:                  grantee,
		Role:                  role,
		EmailAddress:          email,
		SendNotificationEmail: args.BoolOr("sendNotificationEmail", true),
	})
	if err != nil {
		return common.FailedTo("sharing file", err)
	}

	return common.TextResult(fmt.Sprintf("File shared successfully!\n\nPermission ID: %s\nEmail: %s\nRole: %s\nType: %s",
		perm.ID, email, perm.Role, perm.Type))
}
