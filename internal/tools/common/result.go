package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/goopy/internal/google"
)

// JSONResult renders v as indented JSON text.
func JSONResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ErrorResult reports err to the client with its remediation hint. Tool
// failures are results, not protocol errors.
func ErrorResult(action string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s: %v", action, err)
	if hint := google.Hint(err); hint != "" {
		msg += "\nhint: " + hint
	}
	return mcp.NewToolResultError(msg)
}
