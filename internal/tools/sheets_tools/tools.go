package sheets_tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/server"
)

// RegisterSheetsTools registers the Sheets tools. Write tools are only added
// when the server context allows writes.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	s.AddTools(Tools(sc)...)
}

// Tools returns the Sheets tools available under sc.
func Tools(sc *server.ServerContext) []mcpserver.ServerTool {
	tools := valueTools(sc)
	if sc.AllowWrites() {
		tools = append(tools, writeValueTools(sc)...)
		tools = append(tools, dimensionTools(sc)...)
	}
	return tools
}
