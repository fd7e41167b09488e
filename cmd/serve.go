package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/config"
	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/logging"
	"github.com/teemow/goopy/internal/resources"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/tools/drive_tools"
	"github.com/teemow/goopy/internal/tools/sheets_tools"
	"github.com/teemow/goopy/internal/tools/slides_tools"
)

// serveFlags holds the serve flags. Flags the user did not set fall back to
// the [serve] section of the config file.
type serveFlags struct {
	transport        string
	httpAddr         string
	yolo             bool
	disableStreaming bool
	metricsEnabled   bool
	metricsAddr      string
}

// serveOptions is the merged serve configuration.
type serveOptions struct {
	Transport        string
	HTTPAddr         string
	AllowWrites      bool
	DisableStreaming bool
	MetricsEnabled   bool
	MetricsAddr      string
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Drive,
Sheets and Slides tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp, with /healthz and /readyz

Safety Mode:
  By default, the server operates in read-only mode, providing only safe operations.
  Use --yolo to enable write operations (file creation, sharing, cell updates,
  slide edits).

Credentials:
  Every tool call runs with the credentials given by --credentials,
  GOOGLE_APPLICATION_CREDENTIALS or credentials_file in the config file.
  OAuth clients must be authorized once with 'goopy auth login' before the
  server can use them without a browser.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveServeOptions(cmd, flags)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&flags.transport, "transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&flags.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&flags.yolo, "yolo", false, "Enable write operations (file creation, sharing, cell and slide edits). Default is read-only mode.")
	cmd.Flags().BoolVar(&flags.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&flags.metricsEnabled, "metrics-enabled", false, "Enable the metrics server on a dedicated port (streamable-http only)")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

// resolveServeOptions merges explicitly set flags over the config file.
func resolveServeOptions(cmd *cobra.Command, flags serveFlags) (serveOptions, error) {
	cfg, err := config.Resolve(config.ReadEnvOverrides(), globalFlags)
	if err != nil {
		return serveOptions{}, err
	}
	return mergeServeOptions(cfg.Serve, flags, cmd.Flags().Changed), nil
}

func mergeServeOptions(cfg config.ServeConfig, flags serveFlags, changed func(string) bool) serveOptions {
	opts := serveOptions{
		Transport:        cfg.Transport,
		HTTPAddr:         cfg.HTTPAddr,
		AllowWrites:      cfg.Yolo,
		DisableStreaming: flags.disableStreaming,
		MetricsEnabled:   cfg.MetricsEnabled,
		MetricsAddr:      cfg.MetricsAddr,
	}
	if changed("transport") || opts.Transport == "" {
		opts.Transport = flags.transport
	}
	if changed("http-addr") || opts.HTTPAddr == "" {
		opts.HTTPAddr = flags.httpAddr
	}
	if changed("yolo") {
		opts.AllowWrites = flags.yolo
	}
	if changed("metrics-enabled") {
		opts.MetricsEnabled = flags.metricsEnabled
	}
	if changed("metrics-addr") || opts.MetricsAddr == "" {
		opts.MetricsAddr = flags.metricsAddr
	}
	return opts
}

// serveAuthMode keeps the consent flow off stdin when stdin is the MCP
// channel.
func serveAuthMode(transport string) authMode {
	if transport == config.TransportStdio {
		return authServeStdio
	}
	return authInteractive
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.Transport {
	case config.TransportStdio, config.TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.Transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Warn("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	metrics := provider.Metrics()
	a, err := newAppWithAuth(serveAuthMode(opts.Transport), google.WithAuthObserver(func(kind google.CredentialKind, result string) {
		metrics.RecordCredentialResolution(shutdownCtx, string(kind), result)
	}))
	if err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx, server.Options{
		Registry:    a.registry,
		Spec:        a.spec,
		Logger:      a.logger,
		Metrics:     metrics,
		AuditLogger: instrumentation.NewAuditLogger(a.logger, instrConfig.AuditLogging),
		AllowWrites: opts.AllowWrites,
	})
	defer serverContext.Shutdown()

	mcpSrv := newMCPServer(serverContext)

	if opts.AllowWrites {
		a.logger.Info("Starting server with WRITE operations enabled (--yolo flag is set)")
	} else {
		a.logger.Info("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
	}

	switch opts.Transport {
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider, opts)
	default:
		return runStdioServer(mcpSrv)
	}
}

// newMCPServer creates the MCP server and registers the resources and the
// tools allowed by sc.
func newMCPServer(sc *server.ServerContext) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer("goopy", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	resources.RegisterServerResources(mcpSrv, sc)
	drive_tools.RegisterDriveTools(mcpSrv, sc)
	sheets_tools.RegisterSheetsTools(mcpSrv, sc)
	slides_tools.RegisterSlidesTools(mcpSrv, sc)
	return mcpSrv
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, provider *instrumentation.Provider, opts serveOptions) error {
	logger := sc.Logger()

	var metricsServer *server.MetricsServer
	if opts.MetricsEnabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", logging.Err(err))
			}
		}()
	}

	healthChecker := server.NewHealthChecker(sc)
	var httpMetrics *instrumentation.Metrics
	if provider.Enabled() {
		httpMetrics = provider.Metrics()
	}
	httpServer := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		DisableStreaming: opts.DisableStreaming,
		HealthChecker:    healthChecker,
		Metrics:          httpMetrics,
	})

	logger.Info("Streamable HTTP server starting",
		"addr", opts.HTTPAddr,
		"endpoint", server.MCPEndpointPath,
		"health", "/healthz, /readyz",
		"metrics", metricsServer != nil)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(opts.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
	case err := <-serverDone:
		if err != nil {
			serveErr = fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	healthChecker.SetReady(false)
	sc.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("error shutting down HTTP server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error during metrics server shutdown", logging.Err(err))
		}
	}
	return serveErr
}
