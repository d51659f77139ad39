package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/tools"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

func TestREST_UpdateCell(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.setToken(t, "tok")

	rec := ts.do(http.MethodPost, "/tools/gsheets_update_cell",
		`{"spreadsheetId":"S1","range":"Sheet1!A1","value":"42"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["isError"])
	text := body["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "Sheet1!A1")
	assert.Equal(t, [][]interface{}{{"42"}}, ts.factory.Sheets.Range("S1", "Sheet1!A1"))
}

func TestREST_ToolStatuses(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/tools/gdrive_search", `{"query":"x"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errTokenNotSet, decodeJSON(t, rec)["error"])

	ts.setToken(t, "tok")

	rec = ts.do(http.MethodPost, "/tools/nonexistent", `{}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/tools/gdrive_search", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/tools/gdrive_search", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeJSON(t, rec)["isError"], "missing query is reported in the result")
}

func TestREST_DeleteTwice(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.setToken(t, "tok")

	for i := 0; i < 2; i++ {
		rec := ts.do(http.MethodPost, "/tools/gdrive_delete_file", `{"fileId":"already-gone"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeJSON(t, rec)["isError"])
	}
	assert.Equal(t, 2, ts.factory.Drive.CallCount())
}

func TestREST_PanicIs500(t *testing.T) {
	registry, err := tools.NewRegistry(common.Tool{
		Definition: mcp.NewTool("explode"),
		Handler: func(context.Context, *google.Client, common.Arguments) common.Result {
			panic("kaboom")
		},
	})
	require.NoError(t, err)

	ts := newTestServer(t, registry)
	ts.setToken(t, "tok")

	rec := ts.do(http.MethodPost, "/tools/explode", `{}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errInternal, decodeJSON(t, rec)["error"])
}

func TestREST_SetToken(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.factory.Rejected["revoked"] = true

	rec := ts.do(http.MethodPost, "/set-token", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Access token is required", decodeJSON(t, rec)["error"])

	rec = ts.do(http.MethodPost, "/set-token", `{"accessToken":"revoked"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid access token", decodeJSON(t, rec)["error"])
	assert.False(t, ts.sc.Holder().HasToken())

	rec = ts.do(http.MethodPost, "/set-token", `{"accessToken":"good"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeJSON(t, rec)["success"])
	assert.Equal(t, "good", ts.sc.Holder().Token())
}

func TestREST_ListFiles(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/files", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.setToken(t, "tok")
	ts.factory.Drive.AddFile(&drive.FileInfo{ID: "abc", Name: "a.txt", MimeType: "text/plain"}, nil)

	rec = ts.do(http.MethodGet, "/files?pageToken=next", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[{"id":"abc","name":"a.txt","mimeType":"text/plain","uri":"gdrive:///abc"}]}`, rec.Body.String())

	opts := ts.factory.Drive.Calls()[0].Args[0].(*drive.ListOptions)
	assert.Equal(t, 10, opts.PageSize)
	assert.Equal(t, "next", opts.PageToken)

	rec = ts.do(http.MethodGet, "/files?pageSize=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, ts.factory.Drive.Calls()[1].Args[0].(*drive.ListOptions).PageSize)

	rec = ts.do(http.MethodGet, "/files?pageSize=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestREST_FileContent(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.setToken(t, "tok")
	ts.factory.Drive.AddFile(&drive.FileInfo{ID: "n1", Name: "notes.txt", MimeType: "text/plain"}, []byte("hi"))

	rec := ts.do(http.MethodGet, "/files/n1/content", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, false, body["isError"])
	assert.Equal(t, "Contents of notes.txt (text/plain):\n\nhi",
		body["content"].([]any)[0].(map[string]any)["text"])
}

func TestREST_ListTools(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodGet, "/tools", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON(t, rec)["tools"].([]any)
	assert.Len(t, list, 8)
}
