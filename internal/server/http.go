package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jjwjr94/google-drive-mcp/internal/logging"
)

const (
	// DefaultReadHeaderTimeout bounds reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds a whole response, including the tool call.
	DefaultWriteTimeout = 2 * time.Minute

	// DefaultIdleTimeout closes idle keep-alive connections.
	DefaultIdleTimeout = 120 * time.Second
)

// HTTPServer serves the router over HTTP.
type HTTPServer struct {
	httpServer *http.Server
	health     *HealthChecker
	sc         *ServerContext
}

// NewHTTPServer creates an HTTP server listening on addr.
func NewHTTPServer(sc *ServerContext, addr string, allowedOrigins []string) *HTTPServer {
	health := NewHealthChecker(sc)
	return &HTTPServer{
		sc:     sc,
		health: health,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(sc, RouterOptions{AllowedOrigins: allowedOrigins, Health: health}),
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
		},
	}
}

// Handler returns the HTTP handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *HTTPServer) Addr() string {
	return s.httpServer.Addr
}

// Start blocks serving requests until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.sc.logger.Info("starting HTTP server",
		"addr", s.httpServer.Addr,
		"has_token", s.sc.holder.HasToken())

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown marks the server not ready and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	s.sc.Shutdown()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.sc.logger.Error("HTTP server shutdown failed", logging.Err(err))
		return err
	}
	return nil
}
