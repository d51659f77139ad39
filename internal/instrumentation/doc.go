// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the Drive MCP server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, route and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - mcp_rpc_requests_total: Counter of JSON-RPC requests by method and error code
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Drive and Sheets calls by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of their durations
//
// Credential Metrics:
//   - credential_updates_total: Counter of stored access tokens by source (header, set_token)
//   - credential_validations_total: Counter of token probes by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool and status
//   - mcp_tool_duration_seconds: Histogram of tool durations
//
// # Exporters
//
// Metrics go to Prometheus (default, scraped from the metrics server), OTLP
// over HTTP or stdout. Traces go to OTLP, stdout or nowhere (default).
//
// # Configuration
//
//	INSTRUMENTATION_ENABLED=true
//	METRICS_EXPORTER=prometheus
//	TRACING_EXPORTER=otlp
//	OTEL_EXPORTER_OTLP_ENDPOINT=localhost:4318
//	OTEL_TRACES_SAMPLER_ARG=0.1
//	AUDIT_LOGGING_ENABLED=true
//
// # Audit Logging
//
// Every tool call produces one tool_executed or tool_failed line with the
// tool, Google operation, duration and call ID. Arguments are omitted unless
// AUDIT_LOGGING_INCLUDE_ARGUMENTS is set, because they can carry file
// contents and email addresses.
package instrumentation
