package common

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
)

func TestInstrumented(t *testing.T) {
	tests := []struct {
		name      string
		result    Result
		wantAudit string
	}{
		{"success", TextResult("done"), "tool_executed"},
		{"failure", ErrorResult("Error deleting file: nope"), "tool_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			audit := instrumentation.NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)),
				instrumentation.AuditLoggingConfig{Enabled: true})

			var gotInfo CallInfo
			tool := Tool{
				Definition: mcp.NewTool("gdrive_delete_file"),
				API:        instrumentation.APIOperation{Service: instrumentation.ServiceDrive, Operation: instrumentation.OperationDelete},
				Handler: func(ctx context.Context, _ *google.Client, _ Arguments) Result {
					gotInfo = CallInfoFromContext(ctx)
					return tt.result
				},
			}

			ctx := WithCallInfo(context.Background(), CallInfo{ID: "call-7", Transport: "http"})
			got := Instrumented(tool, &instrumentation.Metrics{}, audit)(ctx, nil, Arguments{"fileId": "x"})

			assert.Equal(t, tt.result, got)
			assert.Equal(t, "call-7", gotInfo.ID)
			assert.Contains(t, buf.String(), tt.wantAudit)
			assert.Contains(t, buf.String(), "call_id=call-7")
		})
	}
}

func TestInstrumented_NilRecorders(t *testing.T) {
	tool := Tool{
		Definition: mcp.NewTool("gsheets_read"),
		Handler: func(context.Context, *google.Client, Arguments) Result {
			return TextResult("rows")
		},
	}

	got := Instrumented(tool, nil, nil)(context.Background(), nil, nil)
	assert.Equal(t, "rows", got.Text())
	assert.Equal(t, CallInfo{}, CallInfoFromContext(context.Background()))
}
