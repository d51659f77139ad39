package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures one tool call for the audit log.
type ToolInvocation struct {
	Tool      string
	CallID    string
	Transport string
	API       APIOperation

	// Arguments are logged only when IncludeArguments is set.
	Arguments map[string]any

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing an invocation.
func NewToolInvocation(tool string, api APIOperation) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		API:       api,
		StartTime: time.Now(),
	}
}

// WithCall sets the correlation ID and transport of the call.
func (ti *ToolInvocation) WithCall(callID, transport string) *ToolInvocation {
	ti.CallID = callID
	ti.Transport = transport
	return ti
}

// WithArguments records the call arguments.
func (ti *ToolInvocation) WithArguments(args map[string]any) *ToolInvocation {
	ti.Arguments = args
	return ti
}

// WithSpanContext copies the trace context of the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete stops the timer. errMsg is the text of a failed result.
func (ti *ToolInvocation) Complete(success bool, errMsg string) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	ti.Error = errMsg
	return ti
}

// Status returns "success" or "error".
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

func (ti *ToolInvocation) attrs(includeArguments bool) []any {
	attrs := []any{
		slog.String("tool", ti.Tool),
		slog.String("service", ti.API.Service),
		slog.String("operation", ti.API.Operation),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.CallID != "" {
		attrs = append(attrs, slog.String("call_id", ti.CallID))
	}
	if ti.Transport != "" {
		attrs = append(attrs, slog.String("transport", ti.Transport))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID), slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	if includeArguments && len(ti.Arguments) > 0 {
		attrs = append(attrs, slog.Any("arguments", ti.Arguments))
	}
	return attrs
}

// AuditLogger writes one structured line per tool invocation.
type AuditLogger struct {
	logger           *slog.Logger
	enabled          bool
	includeArguments bool
}

// NewAuditLogger creates an AuditLogger. A nil logger means slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:           logger.With("component", "audit"),
		enabled:          config.Enabled,
		includeArguments: config.IncludeArguments,
	}
}

// LogToolInvocation logs a completed invocation. Failures log at warn level.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.includeArguments)...)
	} else {
		al.logger.Warn("tool_failed", ti.attrs(al.includeArguments)...)
	}
}
