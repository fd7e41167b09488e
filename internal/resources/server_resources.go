package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/logging"
	"github.com/teemow/goopy/internal/server"
)

// StatusURI is the URI of the server status resource.
const StatusURI = "goopy://server/status"

// Status is the body of the server status resource.
type Status struct {
	Mode            string      `json:"mode"`
	Credentials     string      `json:"credentials"`
	CredentialsKind string      `json:"credentialsKind"`
	APIs            []APIStatus `json:"apis"`
}

// APIStatus describes one Google API the server can call.
type APIStatus struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Scopes  []string `json:"scopes"`
}

// RegisterServerResources registers the read-only server resources.
func RegisterServerResources(s *mcpserver.MCPServer, sc *server.ServerContext) {
	statusResource := mcp.NewResource(
		StatusURI,
		"Server Status",
		mcp.WithResourceDescription("Write mode, credentials and Google APIs available to the tools"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(statusResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleStatus(request, sc)
	})
}

// ServerStatus reports what sc exposes. The credentials path is redacted.
func ServerStatus(sc *server.ServerContext) Status {
	mode := "read-only"
	if sc.AllowWrites() {
		mode = "read-write"
	}
	kind := string(sc.Spec().Kind)
	if kind == "" {
		kind = "detect"
	}

	status := Status{
		Mode:            mode,
		Credentials:     logging.RedactPath(sc.Spec().Path),
		CredentialsKind: kind,
		APIs:            []APIStatus{},
	}
	if reg := sc.Registry(); reg != nil {
		for _, api := range reg.APIs() {
			status.APIs = append(status.APIs, APIStatus{Name: api.Name, Version: api.Version, Scopes: api.Scopes})
		}
	}
	return status
}

func handleStatus(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(ServerStatus(sc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal server status: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
