package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/tools/common"
)

type dimensionResult struct {
	SpreadsheetID string `json:"spreadsheet"`
	SheetID       int64  `json:"sheetId"`
	Dimension     string `json:"dimension"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
}

func dimensionTools(sc *server.ServerContext) []mcpserver.ServerTool {
	insertTool := mcp.NewTool("sheets_insert_dimension",
		mcp.WithDescription("Insert empty rows or columns into a tab of a Google spreadsheet"),
		mcp.WithString("spreadsheet",
			mcp.Required(),
			mcp.Description("Spreadsheet URL or ID"),
		),
		mcp.WithNumber("sheetId",
			mcp.Description("Numeric sheet ID of the tab (see sheets_list_tabs, default: 0)"),
		),
		mcp.WithString("dimension",
			mcp.Description("'ROWS' or 'COLUMNS' (default: ROWS)"),
		),
		mcp.WithNumber("start",
			mcp.Required(),
			mcp.Description("0-based index to insert before"),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of rows or columns to insert (default: 1)"),
		),
	)

	deleteTool := mcp.NewTool("sheets_delete_dimension",
		mcp.WithDescription("Delete rows or columns from a tab of a Google spreadsheet"),
		mcp.WithString("spreadsheet",
			mcp.Required(),
			mcp.Description("Spreadsheet URL or ID"),
		),
		mcp.WithNumber("sheetId",
			mcp.Description("Numeric sheet ID of the tab (see sheets_list_tabs, default: 0)"),
		),
		mcp.WithString("dimension",
			mcp.Description("'ROWS' or 'COLUMNS' (default: ROWS)"),
		),
		mcp.WithNumber("start",
			mcp.Required(),
			mcp.Description("0-based index of the first row or column to delete"),
		),
		mcp.WithNumber("end",
			mcp.Description("0-based exclusive end index (default: start + 1)"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSheets,
			Operation: "insert_dimension",
		}, insertTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, sheetID, dim, start, err := dimensionArgs(args)
			if err != nil {
				return common.ErrorResult("failed to insert dimension", err), nil
			}
			count, err := args.Int("count", 1)
			if err != nil {
				return common.ErrorResult("failed to insert dimension", err), nil
			}

			if err := sc.Sheets().InsertDimension(ctx, ref, sheetID, dim, start, count); err != nil {
				return common.ErrorResult("failed to insert dimension", err), nil
			}
			return common.JSONResult(dimensionResult{
				SpreadsheetID: ref, SheetID: sheetID, Dimension: string(dim), Start: start, End: start + count,
			})
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSheets,
			Operation: "delete_dimension",
		}, deleteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, sheetID, dim, start, err := dimensionArgs(args)
			if err != nil {
				return common.ErrorResult("failed to delete dimension", err), nil
			}
			end, err := args.Int("end", 0)
			if err != nil {
				return common.ErrorResult("failed to delete dimension", err), nil
			}

			if err := sc.Sheets().DeleteDimension(ctx, ref, sheetID, dim, start, end); err != nil {
				return common.ErrorResult("failed to delete dimension", err), nil
			}
			if end <= 0 {
				end = start + 1
			}
			return common.JSONResult(dimensionResult{
				SpreadsheetID: ref, SheetID: sheetID, Dimension: string(dim), Start: start, End: end,
			})
		}),
	}
}
