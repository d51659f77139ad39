package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/logging"
)

// AccessTokenHeader carries a token that replaces the held one.
const AccessTokenHeader = "x-access-token"

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins for CORS. Empty allows all origins.
	AllowedOrigins []string

	// Health serves the probe endpoints. Nil creates a new checker.
	Health *HealthChecker
}

// NewRouter builds the HTTP handler serving /mcp and the REST surface.
func NewRouter(sc *ServerContext, opts RouterOptions) http.Handler {
	if opts.Health == nil {
		opts.Health = NewHealthChecker(sc)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(sc.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", AccessTokenHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(httpMetrics(sc.metrics))
	r.Use(sc.captureAccessToken)

	r.Method(http.MethodGet, "/health", opts.Health.ServiceHandler())
	r.Method(http.MethodGet, "/healthz", opts.Health.LivenessHandler())
	r.Method(http.MethodGet, "/readyz", opts.Health.ReadinessHandler())

	r.Post("/set-token", sc.handleSetToken)
	r.Get("/tools", sc.handleListTools)
	r.Post("/tools/{name}", sc.handleCallTool)
	r.Get("/files", sc.handleListFiles)
	r.Get("/files/{fileId}/content", sc.handleFileContent)

	r.Post("/mcp", sc.handleMCP)

	return r
}

// captureAccessToken stores the x-access-token header before the request
// is handled, so later requests without the header keep using it.
func (sc *ServerContext) captureAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(AccessTokenHeader)
		if token != "" && token != sc.holder.Token() {
			if err := sc.holder.SetToken(r.Context(), token); err != nil {
				sc.logger.Warn("failed to store access token from header", logging.Err(err))
			} else {
				sc.metrics.RecordCredentialUpdate(r.Context(), instrumentation.TokenSourceHeader)
				sc.logger.Debug("access token updated from header", logging.Token(token))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func httpMetrics(metrics *instrumentation.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, pattern, ww.Status(), time.Since(start))
		})
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr)
		})
	}
}
