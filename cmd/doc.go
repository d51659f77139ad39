// Package cmd implements the command-line interface for gdrive-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server (HTTP or stdio)
//   - token: Obtain and check Google access tokens outside the server
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
