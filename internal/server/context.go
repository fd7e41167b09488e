package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/goopy/internal/drive"
	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/sheets"
	"github.com/teemow/goopy/internal/slides"
)

// Options configures a ServerContext.
type Options struct {
	// Registry builds the Google API clients. Required.
	Registry *google.Registry

	// Spec is the credential spec every tool call runs with.
	Spec google.CredentialSpec

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics and AuditLogger are optional.
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger

	// AllowWrites registers the tools that modify Drive, Sheets and Slides.
	AllowWrites bool
}

// ServerContext holds the service wrappers shared by all MCP tools. Clients
// are built on first use by the registry, so creating a context never
// touches the network.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	registry    *google.Registry
	spec        google.CredentialSpec
	base        *google.Base
	drive       *drive.Client
	sheets      *sheets.Client
	slides      *slides.Client
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	allowWrites bool

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context bound to opts.Spec.
func NewServerContext(ctx context.Context, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := opts.Registry.For(opts.Spec)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		registry:    opts.Registry,
		spec:        opts.Spec,
		base:        base,
		drive:       drive.NewClient(base, logger),
		sheets:      sheets.NewClient(base, logger),
		slides:      slides.NewClient(base, logger),
		logger:      logger,
		metrics:     opts.Metrics,
		auditLogger: opts.AuditLogger,
		allowWrites: opts.AllowWrites,
	}
}

// Context returns the server context, cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Registry returns the client registry.
func (sc *ServerContext) Registry() *google.Registry {
	return sc.registry
}

// Spec returns the credential spec tools run with.
func (sc *ServerContext) Spec() google.CredentialSpec {
	return sc.spec
}

// Base returns the client source bound to Spec.
func (sc *ServerContext) Base() *google.Base {
	return sc.base
}

// Drive returns the Drive wrapper.
func (sc *ServerContext) Drive() *drive.Client {
	return sc.drive
}

// Sheets returns the Sheets wrapper.
func (sc *ServerContext) Sheets() *sheets.Client {
	return sc.sheets
}

// Slides returns the Slides wrapper.
func (sc *ServerContext) Slides() *slides.Client {
	return sc.slides
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// AllowWrites reports whether write tools are enabled.
func (sc *ServerContext) AllowWrites() bool {
	return sc.allowWrites
}

// IsShutdown returns whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. It is safe to call more than once.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return
	}
	sc.shutdown = true
	sc.cancel()
}
