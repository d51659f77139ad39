package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjwjr94/google-drive-mcp/internal/config"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
	"github.com/jjwjr94/google-drive-mcp/internal/instrumentation"
	"github.com/jjwjr94/google-drive-mcp/internal/logging"
	"github.com/jjwjr94/google-drive-mcp/internal/server"
	"github.com/jjwjr94/google-drive-mcp/internal/tools"
)

// serveOptions holds the serve flags. Flags override the config file and
// environment only when set explicitly.
type serveOptions struct {
	configFile     string
	envFile        string
	transport      string
	host           string
	port           int
	logLevel       string
	logFormat      string
	corsOrigins    []string
	metricsAddr    string
	disableMetrics bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server.

With the http transport (default) the server listens on PORT (default 3000):
  POST /mcp                     JSON-RPC 2.0: initialize, tools/list, tools/call
  GET  /health                  service status and whether a token is set
  POST /set-token               validate and store {"accessToken": "..."}
  GET  /tools                   list tools
  POST /tools/{name}            call a tool with a JSON arguments body
  GET  /files                   list files (pageSize, pageToken)
  GET  /files/{fileId}/content  read a file

The stdio transport serves the same tools over MCP stdio. It uses
GOOGLE_DRIVE_ACCESS_TOKEN as its token.

Configuration is read from defaults, the --config YAML file, the .env file
and the environment, in that order. Flags override all of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file")
	cmd.Flags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Path to a .env file (skipped when missing)")
	cmd.Flags().StringVar(&opts.transport, "transport", config.TransportHTTP, "Transport: http or stdio (env: MCP_TRANSPORT)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to listen on (env: HOST)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", config.DefaultPort, "Port to listen on (env: PORT)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json (env: LOG_FORMAT)")
	cmd.Flags().StringSliceVar(&opts.corsOrigins, "cors-allowed-origins", nil, "Allowed CORS origins (env: CORS_ALLOWED_ORIGINS, default: *)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Address of the Prometheus metrics server (env: METRICS_ADDR)")
	cmd.Flags().BoolVar(&opts.disableMetrics, "disable-metrics", false, "Do not start the metrics server (env: METRICS_ENABLED=false)")

	return cmd
}

// loadServeConfig layers flags that were set explicitly over the loaded
// configuration.
func loadServeConfig(cmd *cobra.Command, opts serveOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Server.Transport = opts.transport
	}
	if flags.Changed("host") {
		cfg.Server.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if flags.Changed("cors-allowed-origins") {
		cfg.Server.CORSAllowedOrigins = opts.corsOrigins
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if flags.Changed("disable-metrics") {
		cfg.Metrics.Enabled = !opts.disableMetrics
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadServeConfig(cmd, opts)
	if err != nil {
		return err
	}

	// Logs go to stderr; stdout belongs to the stdio transport.
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if cfg.Server.Transport == config.TransportStdio &&
		(instrConfig.MetricsExporter == instrumentation.ExporterStdout || instrConfig.TracingExporter == instrumentation.ExporterStdout) {
		return fmt.Errorf("stdout exporters cannot be used with the stdio transport")
	}
	provider, err := instrumentation.NewProvider(ctx, instrConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown instrumentation", logging.Err(err))
		}
	}()

	holder := google.NewHolder(google.NewClient, cfg.Google.AccessToken)
	serverContext := server.NewServerContext(ctx, server.Options{
		Holder:   holder,
		Registry: tools.Default(),
		Metrics:  provider.Metrics(),
		Audit:    provider.Audit(),
		Logger:   logger,
		Version:  version,
	})
	defer serverContext.Shutdown()

	switch cfg.Server.Transport {
	case config.TransportStdio:
		logger.Info("serving MCP over stdio", "has_token", holder.HasToken())
		if err := server.ServeStdio(ctx, serverContext); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case config.TransportHTTP:
		return runHTTPServer(ctx, serverContext, cfg, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", cfg.Server.Transport)
	}
}

func runHTTPServer(ctx context.Context, sc *server.ServerContext, cfg *config.Config, provider *instrumentation.Provider, logger *slog.Logger) error {
	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled && provider.ServesPrometheus() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:     cfg.Metrics.Addr,
			Provider: provider,
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	httpServer := server.NewHTTPServer(sc, cfg.Addr(), cfg.Server.CORSAllowedOrigins)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- httpServer.Start()
	}()

	var runErr error
	select {
	case err := <-serverDone:
		if err != nil {
			runErr = fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	errs := []error{runErr}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metrics server: %w", err))
		}
	}
	return errors.Join(errs...)
}
