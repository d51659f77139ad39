package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjwjr94/google-drive-mcp/internal/drive"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/tools"
	"github.com/jjwjr94/google-drive-mcp/internal/tools/common"
)

func TestMCP_WrongVersionIsInvalidRequest(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID any
	}{
		{"numeric id", `{"jsonrpc":"1.0","id":7,"method":"tools/list"}`, float64(7)},
		{"string id", `{"jsonrpc":"1.0","id":"abc","method":"tools/call","params":{"name":"gdrive_search"}}`, "abc"},
		{"missing version", `{"id":3,"method":"initialize"}`, float64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)

			chunks := ts.rpc(t, tt.body)
			require.Len(t, chunks, 1)
			assert.Equal(t, CodeInvalidRequest, errorCode(t, chunks[0]))
			assert.Equal(t, tt.wantID, chunks[0]["id"])
			assert.Equal(t, "2.0", chunks[0]["jsonrpc"])
			assert.Empty(t, ts.factory.Tokens())
		})
	}
}

func TestMCP_ParseError(t *testing.T) {
	ts := newTestServer(t, nil)

	chunks := ts.rpc(t, `{"jsonrpc":"2.0",`)
	require.Len(t, chunks, 1)
	assert.Equal(t, CodeParseError, errorCode(t, chunks[0]))
	assert.Contains(t, chunks[0], "id")
	assert.Nil(t, chunks[0]["id"])
}

func TestMCP_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","pad":"` + strings.Repeat("x", MaxRequestBody) + `"}`
	chunks := ts.rpc(t, body)
	require.Len(t, chunks, 1)
	assert.Equal(t, CodeParseError, errorCode(t, chunks[0]))
}

func TestMCP_Initialize(t *testing.T) {
	ts := newTestServer(t, nil)

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	require.Len(t, chunks, 1)

	result := chunks[0]["result"].(map[string]any)
	assert.Equal(t, mcp.LATEST_PROTOCOL_VERSION, result["protocolVersion"])
	assert.Equal(t, map[string]any{"tools": map[string]any{}}, result["capabilities"])
	assert.Equal(t, map[string]any{"name": ServiceName, "version": "1.2.3"}, result["serverInfo"])
}

func TestMCP_ToolsListMatchesRegistry(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do("POST", "/mcp", `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, nil)
	var resp struct {
		ID     int `json:"id"`
		Result struct {
			Tools json.RawMessage `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.ID)

	want, err := json.Marshal(tools.Default().List())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(resp.Result.Tools))

	var items []map[string]any
	require.NoError(t, json.Unmarshal(resp.Result.Tools, &items))
	require.Len(t, items, 8)
	for _, item := range items {
		assert.NotContains(t, item, "handler")
	}
}

func TestMCP_ToolsCallWithoutToken(t *testing.T) {
	ts := newTestServer(t, nil)

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"gdrive_search","arguments":{"query":"x"}}}`)
	require.Len(t, chunks, 1)
	assert.Equal(t, CodeCredentialsRequired, errorCode(t, chunks[0]))
	assert.Equal(t, float64(5), chunks[0]["id"])
	assert.Equal(t, google.ErrCredentialsUnavailable.Error(), errorMessage(chunks[0]))

	assert.Empty(t, ts.factory.Tokens(), "no client is built")
	assert.Zero(t, ts.factory.Drive.CallCount(), "no remote call is attempted")
	assert.Zero(t, ts.factory.Sheets.CallCount())
}

func TestMCP_UnknownTool(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.setToken(t, "tok")

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nonexistent","arguments":{}}}`)
	require.Len(t, chunks, 1)
	assert.Equal(t, CodeMethodNotFound, errorCode(t, chunks[0]))
	assert.Contains(t, errorMessage(chunks[0]), "nonexistent")
}

func TestMCP_UnknownMethod(t *testing.T) {
	ts := newTestServer(t, nil)

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	require.Len(t, chunks, 1)
	assert.Equal(t, CodeMethodNotFound, errorCode(t, chunks[0]))
	assert.Equal(t, "method not found: resources/list", errorMessage(chunks[0]))
}

func TestMCP_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params string
	}{
		{"params not an object", `"gdrive_search"`},
		{"missing name", `{"arguments":{}}`},
		{"arguments not an object", `{"name":"gdrive_search","arguments":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			ts.setToken(t, "tok")

			chunks := ts.rpc(t, fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":%s}`, tt.params))
			require.Len(t, chunks, 1)
			assert.Equal(t, CodeInvalidParams, errorCode(t, chunks[0]))
		})
	}
}

func TestMCP_SearchEndToEnd(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.setToken(t, "tok")
	ts.factory.Drive.AddFile(&drive.FileInfo{ID: "id-1", Name: "Quarterly report 2024", MimeType: "application/pdf"}, nil)
	ts.factory.Drive.AddFile(&drive.FileInfo{ID: "id-2", Name: "Quarterly report 2025", MimeType: "application/pdf"}, nil)

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"gdrive_search","arguments":{"query":"quarterly report"}},"id":1}`)
	require.Len(t, chunks, 2)

	started := chunks[0]
	assert.Equal(t, "tools/call", started["method"])
	assert.Equal(t, float64(1), started["id"])
	params := started["params"].(map[string]any)
	assert.Equal(t, "started", params["status"])
	assert.Equal(t, "gdrive_search", params["name"])
	assert.NotEmpty(t, params["callId"])
	assert.Equal(t, map[string]any{"query": "quarterly report"}, params["arguments"])
	assert.NotContains(t, started, "result")

	done := chunks[1]
	assert.Equal(t, "tools/call", done["method"])
	assert.Equal(t, float64(1), done["id"])
	result := done["result"].(map[string]any)
	assert.Equal(t, false, result["isError"])
	content := result["content"].([]any)
	require.Len(t, content, 1)
	text := content[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, "Found 2 files:")
	assert.Contains(t, text, "Quarterly report 2024")
	assert.Contains(t, text, "id-1")
	assert.Contains(t, text, "Quarterly report 2025")
	assert.Contains(t, text, "id-2")
}

func TestMCP_ToolErrorIsInBand(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.setToken(t, "tok")

	for i := 0; i < 2; i++ {
		chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"gdrive_delete_file","arguments":{"fileId":"gone"}}}`)
		require.Len(t, chunks, 2)
		assert.NotContains(t, chunks[1], "error")
		result := chunks[1]["result"].(map[string]any)
		assert.Equal(t, true, result["isError"])
	}
}

func TestMCP_ExplicitAccessTokenIsNotStored(t *testing.T) {
	ts := newTestServer(t, nil)

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"gdrive_search","arguments":{"query":"x"},"accessToken":"per-call"}}`)
	require.Len(t, chunks, 2)
	assert.Equal(t, []string{"per-call"}, ts.factory.Tokens())
	assert.False(t, ts.sc.Holder().HasToken())
}

func TestMCP_PanicIsInternalError(t *testing.T) {
	registry, err := tools.NewRegistry(common.Tool{
		Definition: mcp.NewTool("explode", mcp.WithDescription("panics")),
		Handler: func(context.Context, *google.Client, common.Arguments) common.Result {
			panic("kaboom")
		},
	})
	require.NoError(t, err)

	ts := newTestServer(t, registry)
	ts.setToken(t, "tok")

	chunks := ts.rpc(t, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"explode"}}`)
	require.NotEmpty(t, chunks)
	last := chunks[len(chunks)-1]
	assert.Equal(t, CodeInternalError, errorCode(t, last))
	assert.Contains(t, errorMessage(last), "kaboom")
	assert.Equal(t, float64(4), last["id"])
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodInitialize, ParseMethod("initialize"))
	assert.Equal(t, MethodToolsList, ParseMethod("tools/list"))
	assert.Equal(t, MethodToolsCall, ParseMethod("tools/call"))
	assert.Equal(t, MethodUnknown, ParseMethod("Tools/Call"))
	assert.Equal(t, MethodUnknown, ParseMethod(""))
	assert.Equal(t, "tools/call", MethodToolsCall.String())
	assert.Equal(t, "unknown", MethodUnknown.String())
}
