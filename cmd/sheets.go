package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/sheets"
)

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Read and edit Google Sheets",
		Long: `Read and edit Google Sheets. SPREADSHEET accepts a spreadsheet ID or URL;
RANGE is A1 notation such as 'Sheet1!A1:C10'.`,
	}

	cmd.AddCommand(newSheetsTabsCmd())
	cmd.AddCommand(newSheetsGetCmd())
	cmd.AddCommand(newSheetsUpdateCmd("update", false))
	cmd.AddCommand(newSheetsUpdateCmd("append", true))
	cmd.AddCommand(newSheetsInsertCmd())
	cmd.AddCommand(newSheetsDeleteCmd())
	return cmd
}

func newSheetsTabsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tabs SPREADSHEET",
		Short: "List the tabs of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			tabs, err := a.sheets().Tabs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tabs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tSHEET ID\tTITLE\tSIZE")
			for _, t := range tabs {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%dx%d\n", t.Index, t.ID, t.Title, t.Rows, t.Cols)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSheetsGetCmd() *cobra.Command {
	var (
		rangeA1   string
		pageIndex int
		headerRow int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "get SPREADSHEET",
		Short: "Print cell values",
		Long: `Print the values of a range, or of the tab at --page when no range is given.
With --header-row the columns are named from that 1-based row and the rows
below it are printed as records.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			sheet, err := a.sheets().GetSheet(cmd.Context(), args[0], pageIndex, rangeA1)
			if err != nil {
				return err
			}

			if headerRow < 0 {
				if asJSON {
					return printJSON(cmd.OutOrStdout(), sheet)
				}
				return printRows(cmd.OutOrStdout(), nil, sheet.Values)
			}

			table, err := sheets.NewTable(sheet, headerRow)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), table.Records())
			}
			return printRows(cmd.OutOrStdout(), table.Headers, table.Rows)
		},
	}

	cmd.Flags().StringVar(&rangeA1, "range", "", "A1 range (default: the whole tab at --page)")
	cmd.Flags().IntVar(&pageIndex, "page", 0, "0-based tab index used when --range is empty")
	cmd.Flags().IntVar(&headerRow, "header-row", -1, "1-based row holding column names; 0 names columns A, B, C")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSheetsUpdateCmd(use string, appendRows bool) *cobra.Command {
	var values, csvFile string

	short := "Overwrite a range with values"
	if appendRows {
		short = "Append rows after the table in a range"
	}

	cmd := &cobra.Command{
		Use:   use + " SPREADSHEET RANGE",
		Short: short,
		Long: short + `. Values are given as a JSON array of rows with --values,
or read from a CSV file with --csv ('-' reads stdin).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readRows(cmd.InOrStdin(), values, csvFile)
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			res, err := a.sheets().Update(cmd.Context(), args[0], args[1], rows, appendRows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %d rows, %d cells\n", res.UpdatedRange, res.UpdatedRows, res.UpdatedCells)
			return nil
		},
	}

	cmd.Flags().StringVar(&values, "values", "", `Rows as JSON, e.g. '[["name","qty"],["apples",3]]'`)
	cmd.Flags().StringVar(&csvFile, "csv", "", "CSV file to read rows from ('-' for stdin)")
	return cmd
}

func newSheetsInsertCmd() *cobra.Command {
	var d dimensionFlags
	var count int64

	cmd := &cobra.Command{
		Use:   "insert SPREADSHEET",
		Short: "Insert empty rows or columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := d.parse()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sheets().InsertDimension(cmd.Context(), args[0], d.sheetID, dim, d.start, count); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d %s at %d\n", count, strings.ToLower(string(dim)), d.start)
			return nil
		},
	}

	d.register(cmd)
	cmd.Flags().Int64Var(&count, "count", 1, "Number of rows or columns to insert")
	return cmd
}

func newSheetsDeleteCmd() *cobra.Command {
	var d dimensionFlags
	var end int64

	cmd := &cobra.Command{
		Use:   "delete SPREADSHEET",
		Short: "Delete rows or columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := d.parse()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.sheets().DeleteDimension(cmd.Context(), args[0], d.sheetID, dim, d.start, end); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d to %d\n", strings.ToLower(string(dim)), d.start, end)
			return nil
		},
	}

	d.register(cmd)
	cmd.Flags().Int64Var(&end, "end", 0, "0-based end index, exclusive")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// dimensionFlags are shared by insert and delete.
type dimensionFlags struct {
	sheetID   int64
	dimension string
	start     int64
}

func (d *dimensionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&d.sheetID, "sheet-id", 0, "Numeric sheet ID of the tab (see 'goopy sheets tabs')")
	cmd.Flags().StringVar(&d.dimension, "dimension", "rows", "rows or columns")
	cmd.Flags().Int64Var(&d.start, "start", 0, "0-based start index")
}

func (d *dimensionFlags) parse() (sheets.Dimension, error) {
	if d.sheetID < 0 {
		return "", google.Invalid("sheet id", "must not be negative, got %d", d.sheetID)
	}
	return sheets.ParseDimension(d.dimension)
}

// readRows parses rows from JSON or CSV. Exactly one source must be given.
func readRows(stdin io.Reader, values, csvFile string) ([][]interface{}, error) {
	switch {
	case values != "" && csvFile != "":
		return nil, google.Invalid("values", "use either --values or --csv, not both")
	case values != "":
		var rows [][]interface{}
		if err := json.Unmarshal([]byte(values), &rows); err != nil {
			return nil, google.Invalid("values", "must be a JSON array of rows: %v", err)
		}
		return rows, nil
	case csvFile != "":
		r := stdin
		if csvFile != "-" {
			f, err := os.Open(csvFile)
			if err != nil {
				return nil, fmt.Errorf("failed to open CSV file: %w", err)
			}
			defer f.Close()
			r = f
		}
		return readCSV(r)
	}
	return nil, google.Invalid("values", "one of --values or --csv is required")
}

func readCSV(r io.Reader) ([][]interface{}, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows [][]interface{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		row := make([]interface{}, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		rows = append(rows, row)
	}
}

func printRows(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
