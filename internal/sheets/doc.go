// Package sheets provides a client for the Google Sheets v4 API.
//
// It reads ranges as formatted values, turns them into a Table with named
// columns, writes or appends raw values, and inserts or deletes whole rows
// and columns. Spreadsheets are referenced by URL or bare id.
package sheets
