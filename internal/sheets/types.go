package sheets

import (
	"strings"

	"github.com/teemow/goopy/internal/google"
)

// Sheet is a block of cell values read from a spreadsheet, rendered as the
// user sees them.
type Sheet struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	Range         string     `json:"range"`
	Values        [][]string `json:"values"`
}

// Tab describes one sheet (tab) of a spreadsheet.
type Tab struct {
	ID    int64  `json:"sheetId"`
	Title string `json:"title"`
	Index int64  `json:"index"`
	Rows  int64  `json:"rows,omitempty"`
	Cols  int64  `json:"columns,omitempty"`
}

// UpdateResult summarizes a values update or append.
type UpdateResult struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

// Dimension selects rows or columns.
type Dimension string

const (
	Rows    Dimension = "ROWS"
	Columns Dimension = "COLUMNS"
)

// ParseDimension accepts "rows" or "columns" in any case.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ROWS", "ROW":
		return Rows, nil
	case "COLUMNS", "COLUMN", "COLS":
		return Columns, nil
	}
	return "", google.Invalid("dimension", "%q is not ROWS or COLUMNS", s)
}

// ColumnName returns the A1 column letters for a 1-based column number:
// 1 is A, 26 is Z, 27 is AA. Non-positive numbers return "".
func ColumnName(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append(b, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// ColumnNames returns the column letters for the first n columns.
func ColumnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = ColumnName(i + 1)
	}
	return names
}

// quoteSheetTitle quotes a sheet title for use as an A1 range.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
