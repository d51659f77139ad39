package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jjwjr94/google-drive-mcp/internal/google/fake"
	"github.com/jjwjr94/google-drive-mcp/internal/tools"
)

type testServer struct {
	sc      *ServerContext
	factory *fake.Factory
	handler http.Handler
}

func newTestServer(t *testing.T, registry *tools.Registry) *testServer {
	t.Helper()

	factory := fake.NewFactory()
	sc := NewServerContext(context.Background(), Options{
		Holder:   factory.Holder(""),
		Registry: registry,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:  "1.2.3",
	})
	t.Cleanup(sc.Shutdown)

	return &testServer{
		sc:      sc,
		factory: factory,
		handler: NewRouter(sc, RouterOptions{}),
	}
}

func (ts *testServer) setToken(t *testing.T, token string) {
	t.Helper()
	require.NoError(t, ts.sc.Holder().SetToken(context.Background(), token))
}

func (ts *testServer) do(method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// rpc posts a JSON-RPC request and decodes every NDJSON chunk.
func (ts *testServer) rpc(t *testing.T, body string) []map[string]any {
	t.Helper()

	rec := ts.do(http.MethodPost, "/mcp", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, ndjsonContentType, rec.Header().Get("Content-Type"))
	return decodeChunks(t, rec.Body.Bytes())
}

func decodeChunks(t *testing.T, body []byte) []map[string]any {
	t.Helper()

	var chunks []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var chunk map[string]any
		require.NoError(t, json.Unmarshal(line, &chunk), "chunk %q", line)
		chunks = append(chunks, chunk)
	}
	require.NoError(t, scanner.Err())
	return chunks
}

func errorCode(t *testing.T, chunk map[string]any) int {
	t.Helper()
	e, ok := chunk["error"].(map[string]any)
	require.True(t, ok, "chunk has no error: %v", chunk)
	return int(e["code"].(float64))
}

func errorMessage(chunk map[string]any) string {
	e, _ := chunk["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
