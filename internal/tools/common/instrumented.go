package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
)

// ToolSpec names a tool and the wrapper operation it performs.
type ToolSpec struct {
	Name      string
	Service   string
	Operation string
	ReadOnly  bool

	// Local tools never call Google. They get no API span or API metric.
	Local bool
}

// errToolResult marks a handler that reported failure through the result
// instead of a Go error.
var errToolResult = errors.New("tool returned an error result")

// InstrumentedToolHandler wraps handler with a span, tool and Google API
// metrics, and an audit log entry. The API metric is recorded only when the
// handler requested a service client.
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandler(sc, common.ToolSpec{
//		Name: "drive_list_folder", Service: instrumentation.ServiceDrive,
//		Operation: "list_folder", ReadOnly: true,
//	}, handler))
func InstrumentedToolHandler(sc *server.ServerContext, spec ToolSpec, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, spec.Name, spec.ReadOnly)

		invocation := instrumentation.NewToolInvocation(ctx, spec.Name, spec.Service, spec.Operation, spec.ReadOnly)
		invocation.Credentials = sc.Spec().Path

		handlerCtx := ctx
		var apiSpan trace.Span
		if !spec.Local {
			handlerCtx, apiSpan = instrumentation.StartGoogleAPISpan(ctx, spec.Service, spec.Operation)
		}
		handlerCtx, use := google.WithAPIUse(handlerCtx)

		start := time.Now()
		result, err := handler(handlerCtx, request)
		duration := time.Since(start)

		outcome := err
		if outcome == nil && result != nil && result.IsError {
			outcome = errToolResult
			if msg := resultText(result); msg != "" {
				outcome = errors.New(msg)
			}
		}
		if apiSpan != nil {
			instrumentation.EndSpan(apiSpan, outcome)
		}
		instrumentation.EndSpan(span, outcome)

		invocation.Complete(outcome)
		if metrics := sc.Metrics(); metrics != nil {
			metrics.RecordToolInvocation(ctx, spec.Name, invocation.Status(), duration)
			// Inputs rejected before a client was requested never reached Google.
			if !spec.Local && use.Used() {
				metrics.RecordGoogleAPIOperation(ctx, spec.Service, spec.Operation, invocation.Status(), duration)
			}
		}
		if auditLogger := sc.AuditLogger(); auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

// NewServerTool pairs tool with its instrumented handler. spec.Name is taken
// from the tool.
func NewServerTool(sc *server.ServerContext, spec ToolSpec, tool mcp.Tool, handler mcpserver.ToolHandlerFunc) mcpserver.ServerTool {
	spec.Name = tool.Name
	return mcpserver.ServerTool{Tool: tool, Handler: InstrumentedToolHandler(sc, spec, handler)}
}
