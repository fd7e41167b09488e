package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/logging"
)

const (
	renderFormatted = "FORMATTED_VALUE"
	inputRaw        = "RAW"
	insertRows      = "INSERT_ROWS"
)

// Client wraps the Google Sheets API for one credential spec.
type Client struct {
	source google.ClientSource
	logger *slog.Logger
}

// NewClient creates a Sheets client. A nil logger means slog.Default().
func NewClient(source google.ClientSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{source: source, logger: logging.WithService(logger, "sheets")}
}

func (c *Client) service(ctx context.Context) (*sheets.Service, *google.ServiceClient, error) {
	sc, err := c.source.Client(ctx, google.SheetsV4)
	if err != nil {
		return nil, nil, err
	}
	svc, err := google.Service[*sheets.Service](sc)
	if err != nil {
		return nil, nil, err
	}
	return svc, sc, nil
}

// Tabs lists the sheets of a spreadsheet in display order.
func (c *Client) Tabs(ctx context.Context, ref string) ([]Tab, error) {
	id, err := google.ExtractID(ref)
	if err != nil {
		return nil, err
	}
	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	return c.tabs(ctx, svc, sc, id)
}

func (c *Client) tabs(ctx context.Context, svc *sheets.Service, sc *google.ServiceClient, id string) ([]Tab, error) {
	ss, err := svc.Spreadsheets.Get(id).
		Context(ctx).
		Fields("sheets.properties(sheetId,title,index,gridProperties(rowCount,columnCount))").
		Do()
	if err != nil {
		return nil, sc.MapError("spreadsheets.get", err)
	}

	tabs := make([]Tab, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		tab := Tab{ID: s.Properties.SheetId, Title: s.Properties.Title, Index: s.Properties.Index}
		if g := s.Properties.GridProperties; g != nil {
			tab.Rows = g.RowCount
			tab.Cols = g.ColumnCount
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// GetSheet reads the formatted values of rangeA1. When rangeA1 is empty the
// whole sheet at pageIndex (0 is the first tab) is read, which costs one extra
// request to look up its title.
func (c *Client) GetSheet(ctx context.Context, ref string, pageIndex int, rangeA1 string) (*Sheet, error) {
	id, err := google.ExtractID(ref)
	if err != nil {
		return nil, err
	}
	if pageIndex < 0 {
		return nil, google.Invalid("page index", "must not be negative, got %d", pageIndex)
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(rangeA1) == "" {
		tabs, err := c.tabs(ctx, svc, sc, id)
		if err != nil {
			return nil, err
		}
		if pageIndex >= len(tabs) {
			return nil, google.Invalid("page index", "spreadsheet has %d sheets, index %d is out of range", len(tabs), pageIndex)
		}
		rangeA1 = quoteSheetTitle(tabs[pageIndex].Title)
		c.logger.Debug("Resolved sheet range", logging.FileID(id), "range", rangeA1)
	}

	vr, err := svc.Spreadsheets.Values.Get(id, rangeA1).
		Context(ctx).
		ValueRenderOption(renderFormatted).
		Do()
	if err != nil {
		return nil, sc.MapError("values.get", err)
	}

	return &Sheet{
		SpreadsheetID: id,
		Range:         vr.Range,
		Values:        stringValues(vr.Values),
	}, nil
}

func stringValues(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out
}

// Table reads rangeA1 (the first sheet when empty) and names its columns from
// headerRow. See NewTable.
func (c *Client) Table(ctx context.Context, ref, rangeA1 string, headerRow int) (*Table, error) {
	if headerRow < 0 {
		return nil, google.Invalid("header row", "must not be negative, got %d", headerRow)
	}
	sheet, err := c.GetSheet(ctx, ref, 0, rangeA1)
	if err != nil {
		return nil, err
	}
	return NewTable(sheet, headerRow)
}

// Update writes values into rangeA1 as typed, without parsing formulas or
// numbers. With appendRows the values are inserted as new rows after the
// table found in rangeA1 instead of overwriting it.
func (c *Client) Update(ctx context.Context, ref, rangeA1 string, values [][]interface{}, appendRows bool) (*UpdateResult, error) {
	id, err := google.ExtractID(ref)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rangeA1) == "" {
		return nil, google.Invalid("range", "required")
	}
	if len(values) == 0 {
		return nil, google.Invalid("values", "at least one row is required")
	}

	svc, sc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	body := &sheets.ValueRange{Values: values}

	var updated *sheets.UpdateValuesResponse
	if appendRows {
		resp, err := svc.Spreadsheets.Values.Append(id, rangeA1, body).
			Context(ctx).
			ValueInputOption(inputRaw).
			InsertDataOption(insertRows).
			Do()
		if err != nil {
			return nil, sc.MapError("values.append", err)
		}
		updated = resp.Updates
	} else {
		updated, err = svc.Spreadsheets.Values.Update(id, rangeA1, body).
			Context(ctx).
			ValueInputOption(inputRaw).
			Do()
		if err != nil {
			return nil, sc.MapError("values.update", err)
		}
	}

	result := &UpdateResult{SpreadsheetID: id}
	if updated != nil {
		result.UpdatedRange = updated.UpdatedRange
		result.UpdatedRows = updated.UpdatedRows
		result.UpdatedColumns = updated.UpdatedColumns
		result.UpdatedCells = updated.UpdatedCells
	}

	c.logger.Info("Updated spreadsheet", logging.FileID(id), "range", result.UpdatedRange, "cells", result.UpdatedCells, "append", appendRows)
	return result, nil
}

// DeleteDimension deletes rows or columns [start, end) of the sheet with
// sheetID. Indexes are 0-based; an end of 0 or less deletes only start.
func (c *Client) DeleteDimension(ctx context.Context, ref string, sheetID int64, dim Dimension, start, end int64) error {
	id, err := google.ExtractID(ref)
	if err != nil {
		return err
	}
	if start < 0 {
		return google.Invalid("start index", "must not be negative, got %d", start)
	}
	if end <= 0 {
		end = start + 1
	}
	if end <= start {
		return google.Invalid("end index", "must be greater than start index %d, got %d", start, end)
	}
	dim, err = ParseDimension(string(dim))
	if err != nil {
		return err
	}

	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: dimensionRange(sheetID, dim, start, end),
		},
	}
	if err := c.batchUpdate(ctx, id, req); err != nil {
		return err
	}

	c.logger.Info("Deleted dimension", logging.FileID(id), "dimension", string(dim), "start", start, "end", end)
	return nil
}

// InsertDimension inserts count empty rows or columns before the 0-based
// index start. Inserted cells inherit formatting from the row or column
// before them, except at index 0 where there is none.
func (c *Client) InsertDimension(ctx context.Context, ref string, sheetID int64, dim Dimension, start, count int64) error {
	id, err := google.ExtractID(ref)
	if err != nil {
		return err
	}
	if start < 0 {
		return google.Invalid("start index", "must not be negative, got %d", start)
	}
	if count < 1 {
		return google.Invalid("count", "must be at least 1, got %d", count)
	}
	dim, err = ParseDimension(string(dim))
	if err != nil {
		return err
	}

	req := &sheets.Request{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range:             dimensionRange(sheetID, dim, start, start+count),
			InheritFromBefore: start > 0,
		},
	}
	if err := c.batchUpdate(ctx, id, req); err != nil {
		return err
	}

	c.logger.Info("Inserted dimension", logging.FileID(id), "dimension", string(dim), "start", start, "count", count)
	return nil
}

func dimensionRange(sheetID int64, dim Dimension, start, end int64) *sheets.DimensionRange {
	return &sheets.DimensionRange{
		SheetId:    sheetID,
		Dimension:  string(dim),
		StartIndex: start,
		EndIndex:   end,
		// Zero is a valid sheet id and start index.
		ForceSendFields: []string{"SheetId", "StartIndex"},
	}
}

func (c *Client) batchUpdate(ctx context.Context, id string, requests ...*sheets.Request) error {
	svc, sc, err := c.service(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return sc.MapError("spreadsheets.batchUpdate", err)
	}
	return nil
}
