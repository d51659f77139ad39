// Package sheets_tools provides the Google Sheets tools served over MCP:
// gsheets_read returns a range as tab-separated rows and
// gsheets_update_cell writes a single cell as if typed by a user.
package sheets_tools
