package drive_tools

import (
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

// Tool names.
const (
	SearchToolName       = "gdrive_search"
	ReadFileToolName     = "gdrive_read_file"
	CreateFileToolName   = "gdrive_create_file"
	CreateFolderToolName = "gdrive_create_folder"
	DeleteFileToolName   = "gdrive_delete_file"
	ShareFileToolName    = "gdrive_share_file"
)

func driveOp(operation string) instrumentation.APIOperation {
	return instrumentation.APIOperation{Service: instrumentation.ServiceDrive, Operation: operation}
}

// ReadTools returns the tools that only read from Drive.
func ReadTools() []common.Tool {
	return []common.Tool{searchTool(), readFileTool()}
}

// WriteTools returns the tools that change Drive state.
func WriteTools() []common.Tool {
	return []common.Tool{createFileTool(), createFolderTool(), deleteFileTool(), shareFileTool()}
}
