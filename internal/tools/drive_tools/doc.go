// Package drive_tools provides the Google Drive tools served over MCP.
//
// Available tools:
//   - gdrive_search: Full-text search over non-trashed files
//   - gdrive_read_file: Read a file, exporting Workspace documents
//   - gdrive_create_file: Create a file with optional content
//   - gdrive_create_folder: Create a folder
//   - gdrive_delete_file: Permanently delete a file
//   - gdrive_share_file: Grant a permission on a file
//
// Handlers never return errors. Missing arguments and failed Drive calls
// are reported as results with isError set, for example:
//
//	gdrive_search({query: "quarterly report", pageSize: 5})
//	gdrive_share_file({fileId: "1AbC", emailAddress: "a@example.com", role: "reader"})
package drive_tools
