// Package resources provides MCP resources describing the running server.
// Resources are read-only data sources that MCP clients can fetch.
//
//   - goopy://server/status: write mode, redacted credentials path and the
//     Google APIs with the scopes they request
package resources
