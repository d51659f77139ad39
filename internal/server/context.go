package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/tools"
)

// ServiceName is reported by /health and initialize.
const ServiceName = "gdrive-mcp-server"

// Options configures a ServerContext.
type Options struct {
	Holder   *google.Holder
	Registry *tools.Registry
	Metrics  *instrumentation.Metrics
	Audit    *instrumentation.AuditLogger
	Logger   *slog.Logger
	Version  string
}

// ServerContext holds the dependencies shared by every transport.
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	holder  *google.Holder
	tools   *tools.Registry
	metrics *instrumentation.Metrics
	logger  *slog.Logger
	version string

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context. The registry is wrapped with
// instrumentation; a nil registry means tools.Default().
func NewServerContext(ctx context.Context, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if opts.Holder == nil {
		opts.Holder = google.NewHolder(nil, "")
	}
	if opts.Registry == nil {
		opts.Registry = tools.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		holder:  opts.Holder,
		tools:   opts.Registry.WithInstrumentation(opts.Metrics, opts.Audit),
		metrics: opts.Metrics,
		logger:  opts.Logger,
		version: opts.Version,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Holder returns the credential holder.
func (sc *ServerContext) Holder() *google.Holder {
	return sc.holder
}

// Tools returns the instrumented tool registry.
func (sc *ServerContext) Tools() *tools.Registry {
	return sc.tools
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Version returns the server version.
func (sc *ServerContext) Version() string {
	return sc.version
}

// Shutdown marks the server as shutting down and cancels its context.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}

// IsShutdown reports whether Shutdown was called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
