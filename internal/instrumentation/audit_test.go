package instrumentation

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTool = "gdrive_share_file"

func auditEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation(testTool, APIOperation{ServiceDrive, OperationShare})
	assert.False(t, ti.StartTime.IsZero())

	ti.Complete(true, "")
	assert.True(t, ti.Success)
	assert.Equal(t, StatusSuccess, ti.Status())
	assert.GreaterOrEqual(t, ti.Duration.Nanoseconds(), int64(0))

	ti.Complete(false, "Error sharing file: forbidden")
	assert.Equal(t, StatusError, ti.Status())
	assert.Equal(t, "Error sharing file: forbidden", ti.Error)
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	audit := NewAuditLogger(logger, AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation(testTool, APIOperation{ServiceDrive, OperationShare}).
		WithCall("call-42", "http").
		WithArguments(map[string]any{"emailAddress": "a@example.com"})
	audit.LogToolInvocation(ti.Complete(true, ""))
	audit.LogToolInvocation(ti.Complete(false, "boom"))

	entries := auditEntries(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "tool_executed", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, testTool, entries[0]["tool"])
	assert.Equal(t, "call-42", entries[0]["call_id"])
	assert.Equal(t, "audit", entries[0]["component"])
	assert.NotContains(t, entries[0], "arguments", "arguments are excluded by default")

	assert.Equal(t, "tool_failed", entries[1]["msg"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestAuditLogger_IncludeArguments(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)),
		AuditLoggingConfig{Enabled: true, IncludeArguments: true})

	ti := NewToolInvocation("gsheets_update_cell", APIOperation{ServiceSheets, OperationUpdate}).
		WithArguments(map[string]any{"range": "Sheet1!A1"})
	audit.LogToolInvocation(ti.Complete(true, ""))

	entries := auditEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"range": "Sheet1!A1"}, entries[0]["arguments"])
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	audit := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	audit.LogToolInvocation(NewToolInvocation(testTool, APIOperation{}).Complete(true, ""))
	assert.Empty(t, buf.String())

	var nilAudit *AuditLogger
	nilAudit.LogToolInvocation(NewToolInvocation(testTool, APIOperation{}))
}
