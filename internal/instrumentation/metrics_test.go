package instrumentation

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	metrics := newTestProvider(t).Metrics()

	// None of these should panic.
	metrics.RecordHTTPRequest(ctx, http.MethodPost, "/mcp", http.StatusOK, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, http.MethodGet, "/files/{fileId}/content", http.StatusUnauthorized, time.Millisecond)
	metrics.RecordRPCRequest(ctx, "tools/call", 0)
	metrics.RecordRPCRequest(ctx, "tools/call", -32001)
	metrics.RecordGoogleAPIOperation(ctx, APIOperation{ServiceDrive, OperationSearch}, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, APIOperation{ServiceSheets, OperationUpdate}, StatusError, 50*time.Millisecond)
	metrics.RecordCredentialUpdate(ctx, TokenSourceHeader)
	metrics.RecordCredentialUpdate(ctx, TokenSourceSetToken)
	metrics.RecordCredentialValidation(ctx, true)
	metrics.RecordCredentialValidation(ctx, false)
	metrics.RecordToolInvocation(ctx, "gdrive_search", StatusSuccess, 10*time.Millisecond)
}

func TestMetrics_ZeroValueIsNoop(t *testing.T) {
	ctx := context.Background()

	for _, m := range []*Metrics{{}, nil} {
		m.RecordHTTPRequest(ctx, http.MethodGet, "/health", http.StatusOK, time.Millisecond)
		m.RecordRPCRequest(ctx, "initialize", 0)
		m.RecordGoogleAPIOperation(ctx, APIOperation{ServiceDrive, OperationGet}, StatusSuccess, time.Millisecond)
		m.RecordCredentialUpdate(ctx, TokenSourceHeader)
		m.RecordCredentialValidation(ctx, true)
		m.RecordToolInvocation(ctx, "gsheets_read", StatusError, time.Millisecond)
	}
}

func TestAPIOperation_String(t *testing.T) {
	op := APIOperation{Service: ServiceSheets, Operation: OperationUpdate}
	if got := op.String(); got != "sheets.update" {
		t.Errorf("String() = %q, want %q", got, "sheets.update")
	}
}
