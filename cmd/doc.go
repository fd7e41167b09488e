// Package cmd implements the command-line interface for goopy.
//
// This package provides the following commands:
//   - auth: Authorize an OAuth client (login) and inspect credentials (status)
//   - drive: Create, copy, list, download, share and delete Drive files
//   - sheets: Read values, write or append rows, insert and delete rows or columns
//   - slides: Inspect presentations, replace placeholders, delete tagged slides
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Persistent flags select the config file and credentials and override the
// config file, which in turn is overridden by environment variables.
package cmd
