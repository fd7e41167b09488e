// Package server holds the runtime shared by goopy's MCP tools.
//
// ServerContext binds one credential spec to the Drive, Sheets and Slides
// wrappers together with the optional metrics recorder and audit logger.
// HTTPServer exposes an MCP server over the streamable HTTP transport at
// /mcp with /healthz and /readyz health checks, and MetricsServer serves
// Prometheus metrics on a separate port.
package server
