// Package tooltest calls MCP tool handlers directly in tests.
package tooltest

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/google/googletest"
	"github.com/teemow/goopy/internal/server"
)

// NewContext returns a server context whose clients talk to srv.
func NewContext(t testing.TB, srv *googletest.Server, allowWrites bool) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), server.Options{
		Registry:    srv.Registry(),
		Spec:        googletest.Spec,
		AllowWrites: allowWrites,
	})
	t.Cleanup(sc.Shutdown)
	return sc
}

// Names returns the tool names in registration order.
func Names(tools []mcpserver.ServerTool) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Tool.Name)
	}
	return names
}

// Call invokes the named tool with args and fails the test when the tool is
// missing or the handler returns a Go error.
func Call(t testing.TB, tools []mcpserver.ServerTool, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	for _, tool := range tools {
		if tool.Tool.Name != name {
			continue
		}
		req := mcp.CallToolRequest{}
		req.Params.Name = name
		req.Params.Arguments = args
		result, err := tool.Handler(context.Background(), req)
		if err != nil {
			t.Fatalf("%s returned error: %v", name, err)
		}
		if result == nil {
			t.Fatalf("%s returned a nil result", name)
		}
		return result
	}
	t.Fatalf("tool %s is not registered", name)
	return nil
}

// Text returns the first text content of result.
func Text(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
