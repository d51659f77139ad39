// Package server serves the tool registry to clients.
//
// # Key Components
//
// ServerContext holds the dependencies every transport shares: the
// credential Holder, the instrumented tool registry, metrics and the logger.
//
// NewRouter builds the HTTP surface on chi:
//   - POST /mcp: JSON-RPC 2.0 (initialize, tools/list, tools/call) answered
//     with newline-delimited JSON. tools/call writes a "started" chunk and
//     then a result chunk.
//   - REST: /health, /healthz, /readyz, /set-token, /tools, /tools/{name},
//     /files and /files/{fileId}/content.
//
// Any request carrying an x-access-token header replaces the held token
// before it is handled. The server is single-tenant: the last token written
// is used by every later request.
//
// NewMCPServer and ServeStdio expose the same tools over MCP stdio.
//
// MetricsServer serves Prometheus metrics on a separate listener.
package server
