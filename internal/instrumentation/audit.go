package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/goopy/internal/logging"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool      string
	Service   string
	Operation string
	ReadOnly  bool

	// Credentials is the credentials file the call ran with.
	Credentials string

	StartTime time.Time
	Duration  time.Duration
	Err       error
	TraceID   string
}

// NewToolInvocation starts timing a tool call.
func NewToolInvocation(ctx context.Context, tool, service, operation string, readOnly bool) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		Service:   service,
		Operation: operation,
		ReadOnly:  readOnly,
		StartTime: time.Now(),
		TraceID:   GetTraceID(ctx),
	}
}

// Complete records the duration and outcome.
func (ti *ToolInvocation) Complete(err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Err = err
	return ti
}

// Status is StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	if ti.Err != nil {
		return StatusError
	}
	return StatusSuccess
}

func (ti *ToolInvocation) attrs(includeCredentials bool) []any {
	attrs := []any{
		logging.Tool(ti.Tool),
		logging.Status(ti.Status()),
		slog.Duration(logging.KeyDuration, ti.Duration),
		slog.Bool("read_only", ti.ReadOnly),
	}
	if ti.Service != "" {
		attrs = append(attrs, logging.Service(ti.Service))
	}
	if ti.Operation != "" {
		attrs = append(attrs, logging.Operation(ti.Operation))
	}
	if ti.Credentials != "" {
		if includeCredentials {
			attrs = append(attrs, slog.String(logging.KeyCredentials, ti.Credentials))
		} else {
			attrs = append(attrs, logging.Credentials(ti.Credentials))
		}
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.Err != nil {
		attrs = append(attrs, logging.Err(ti.Err))
	}
	return attrs
}

// AuditLogger writes one line per tool call. Write tools are logged at info
// level; read-only tools at debug level.
type AuditLogger struct {
	logger             *slog.Logger
	enabled            bool
	includeCredentials bool
}

// NewAuditLogger creates an AuditLogger. A nil logger means slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:             logger.With("component", "audit"),
		enabled:            config.Enabled,
		includeCredentials: config.IncludeCredentials,
	}
}

// LogToolInvocation writes the audit record for ti.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	attrs := ti.attrs(al.includeCredentials)
	switch {
	case ti.Err != nil:
		al.logger.Warn("tool_failed", attrs...)
	case ti.ReadOnly:
		al.logger.Debug("tool_executed", attrs...)
	default:
		al.logger.Info("tool_executed", attrs...)
	}
}
