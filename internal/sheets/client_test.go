package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestClient_ReadRange(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet1/values/"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":  "Sheet1!A1:B2",
			"values": [][]any{{"name", "qty"}, {"apples", "3"}},
		})
	})

	got, err := client.ReadRange(context.Background(), "sheet1", "Sheet1!A1:B2")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1!A1:B2", got.Range)
	require.Len(t, got.Values, 2)
	assert.Equal(t, "apples", got.Values[1][0])
}

func TestClient_ReadRange_Validation(t *testing.T) {
	client := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.ReadRange(context.Background(), "", "A1")
	assert.EqualError(t, err, "spreadsheetID is required")

	_, err = client.ReadRange(context.Background(), "s", "")
	assert.EqualError(t, err, "range is required")
}

func TestClient_UpdateCell(t *testing.T) {
	var body sheets.ValueRange
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, ValueInputOption, r.URL.Query().Get("valueInputOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updatedRange": "Sheet1!A1",
			"updatedCells": 1,
		})
	})

	got, err := client.UpdateCell(context.Background(), "sheet1", "Sheet1!A1", "42")
	require.NoError(t, err)

	assert.Equal(t, [][]interface{}{{"42"}}, body.Values)
	assert.Equal(t, "Sheet1!A1", got.UpdatedRange)
	assert.Equal(t, int64(1), got.UpdatedCells)
}

func TestClient_UpdateCell_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Unable to parse range: Nope!Z"}}`))
	})

	_, err := client.UpdateCell(context.Background(), "sheet1", "Nope!Z", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update cell Nope!Z")
	assert.Contains(t, err.Error(), "Unable to parse range")
}
