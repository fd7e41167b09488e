package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/teemow/goopy/internal/drive"
	"github.com/teemow/goopy/internal/google"
)

func TestReadRows(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(csvPath, []byte("name,qty\napples,3\npears\n"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		stdin    string
		values   string
		csvFile  string
		expected [][]interface{}
		wantErr  bool
	}{
		{
			name:     "json values",
			values:   `[["name","qty"],["apples",3]]`,
			expected: [][]interface{}{{"name", "qty"}, {"apples", float64(3)}},
		},
		{
			name:     "csv file with ragged rows",
			csvFile:  csvPath,
			expected: [][]interface{}{{"name", "qty"}, {"apples", "3"}, {"pears"}},
		},
		{
			name:     "csv from stdin",
			stdin:    "a,b\n",
			csvFile:  "-",
			expected: [][]interface{}{{"a", "b"}},
		},
		{
			name:    "invalid json",
			values:  `{"not": "rows"}`,
			wantErr: true,
		},
		{
			name:    "both sources",
			values:  `[["a"]]`,
			csvFile: csvPath,
			wantErr: true,
		},
		{
			name:    "no source",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := readRows(strings.NewReader(tt.stdin), tt.values, tt.csvFile)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("readRows() = %v, want error", rows)
				}
				return
			}
			if err != nil {
				t.Fatalf("readRows() error = %v", err)
			}
			if !reflect.DeepEqual(rows, tt.expected) {
				t.Errorf("readRows() = %v, want %v", rows, tt.expected)
			}
		})
	}
}

func TestReadRowsValidationError(t *testing.T) {
	_, err := readRows(strings.NewReader(""), "", "")
	var validErr *google.ValidationError
	if !errors.As(err, &validErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if validErr.Field != "values" {
		t.Errorf("Field = %q, want values", validErr.Field)
	}
}

func TestShortMimeType(t *testing.T) {
	tests := map[string]string{
		drive.SpreadsheetMimeType: "spreadsheet",
		drive.FolderMimeType:      "folder",
		"application/pdf":         "application/pdf",
	}
	for in, want := range tests {
		if got := shortMimeType(in); got != want {
			t.Errorf("shortMimeType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintLinksSorted(t *testing.T) {
	var buf bytes.Buffer
	if err := printLinks(&buf, map[string]string{
		"b/deck.pptx": "https://drive.google.com/open?id=2",
		"a.docx":      "https://drive.google.com/open?id=1",
	}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "a.docx") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
