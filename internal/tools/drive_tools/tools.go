package drive_tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/server"
)

// RegisterDriveTools registers the Drive tools. Write tools are only added
// when the server context allows writes.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	s.AddTools(Tools(sc)...)
}

// Tools returns the Drive tools available under sc.
func Tools(sc *server.ServerContext) []mcpserver.ServerTool {
	tools := append(folderTools(sc), fileTools(sc)...)
	if sc.AllowWrites() {
		tools = append(tools, writeFileTools(sc)...)
		tools = append(tools, shareTools(sc)...)
	}
	return tools
}
