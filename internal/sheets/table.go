package sheets

import (
	"github.com/teemow/goopy/internal/google"
)

// Table is a sheet with named columns. Every row has exactly len(Headers)
// cells.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`

	columns map[string]int
}

// NewTable names the columns of sheet. headerRow is the 1-based row holding
// the column names; rows above it are dropped. A headerRow of 0 names the
// columns A, B, C and keeps every row. Empty header cells and columns wider
// than the header row are named by their letters.
func NewTable(sheet *Sheet, headerRow int) (*Table, error) {
	if sheet == nil {
		return nil, google.Invalid("sheet", "required")
	}
	if headerRow < 0 {
		return nil, google.Invalid("header row", "must not be negative, got %d", headerRow)
	}
	if headerRow > len(sheet.Values) {
		return nil, google.Invalid("header row", "row %d is past the last row %d", headerRow, len(sheet.Values))
	}

	var header []string
	data := sheet.Values
	if headerRow > 0 {
		header = sheet.Values[headerRow-1]
		data = sheet.Values[headerRow:]
	}

	width := len(header)
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}

	t := &Table{
		Headers: make([]string, width),
		Rows:    make([][]string, len(data)),
		columns: make(map[string]int, width),
	}
	for i := range t.Headers {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if name == "" {
			name = ColumnName(i + 1)
		}
		if _, dup := t.columns[name]; dup {
			return nil, google.Invalid("header row", "column name %q appears more than once", name)
		}
		t.Headers[i] = name
		t.columns[name] = i
	}
	for i, row := range data {
		padded := make([]string, width)
		copy(padded, row)
		t.Rows[i] = padded
	}
	return t, nil
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.columns[name]
	if !ok {
		return nil, google.Invalid("column", "no column named %q", name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Records returns one header-to-cell map per row.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			rec[h] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Index returns the records keyed by the value of column. Values must be
// unique.
func (t *Table) Index(column string) (map[string]map[string]string, error) {
	keys, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	records := t.Records()
	out := make(map[string]map[string]string, len(records))
	for i, key := range keys {
		if _, dup := out[key]; dup {
			return nil, google.Invalid("index column", "value %q appears more than once in %q", key, column)
		}
		out[key] = records[i]
	}
	return out, nil
}
