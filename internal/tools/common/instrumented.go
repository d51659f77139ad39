package common

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
)

type callInfoKey struct{}

// CallInfo identifies a tool call across log lines, spans and audit records.
type CallInfo struct {
	ID        string
	Transport string
}

// WithCallInfo attaches call information to ctx.
func WithCallInfo(ctx context.Context, info CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey{}, info)
}

// CallInfoFromContext returns the call information attached to ctx.
func CallInfoFromContext(ctx context.Context) CallInfo {
	info, _ := ctx.Value(callInfoKey{}).(CallInfo)
	return info
}

// Instrumented wraps the handler of tool with a span, metrics and an audit
// record. Nil metrics or audit are skipped.
func Instrumented(tool Tool, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) Handler {
	name := tool.Name()

	return func(ctx context.Context, client *google.Client, args Arguments) Result {
		info := CallInfoFromContext(ctx)

		ctx, span := instrumentation.StartToolSpan(ctx, name, tool.API,
			attribute.String(instrumentation.SpanAttrCallID, info.ID))
		defer span.End()

		invocation := instrumentation.NewToolInvocation(name, tool.API).
			WithCall(info.ID, info.Transport).
			WithArguments(args).
			WithSpanContext(ctx)

		start := time.Now()
		result := tool.Handler(ctx, client, args)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		errMsg := ""
		if result.IsError {
			status = instrumentation.StatusError
			errMsg = result.Text()
			span.SetAttributes(attribute.Bool(instrumentation.SpanAttrIsError, true))
			instrumentation.SetSpanError(span, errors.New(errMsg))
		} else {
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocation(ctx, name, status, duration)
		metrics.RecordGoogleAPIOperation(ctx, tool.API, status, duration)
		audit.LogToolInvocation(invocation.Complete(!result.IsError, errMsg))

		return result
	}
}
