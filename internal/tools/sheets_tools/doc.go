// Package sheets_tools exposes the Sheets wrapper as MCP tools.
//
// Read-only tools:
//   - sheets_list_tabs: List tabs with their sheet IDs
//   - sheets_get_values: Read a range as rows, or as records keyed by a header row
//
// Write tools (--yolo):
//   - sheets_update_values: Overwrite a range or append rows
//   - sheets_insert_dimension: Insert rows or columns
//   - sheets_delete_dimension: Delete rows or columns
//
// Row and column indexes are 0-based, as in the Sheets API; header rows
// are 1-based, as shown in the Sheets UI.
package sheets_tools
