package google

import (
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// DefaultScopes are the OAuth scopes a token needs for every tool.
//
// The scopes provide access to:
//   - Google Drive: full access (create, delete and share need more than drive.readonly)
//   - Google Sheets: read and write
var DefaultScopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsScope,
}

// ReadOnlyScopes are enough for search, read and sheets_read.
var ReadOnlyScopes = []string{
	drive.DriveReadonlyScope,
	sheets.SpreadsheetsReadonlyScope,
}
