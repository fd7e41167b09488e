package sheets_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/sheets"
	"github.com/teemow/goopy/internal/tools/common"
)

func valueTools(sc *server.ServerContext) []mcpserver.ServerTool {
	listTabsTool := mcp.NewTool("sheets_list_tabs",
		mcp.WithDescription("List the tabs of a Google spreadsheet with their sheet IDs and sizes"),
		mcp.WithString("spreadsheet",
			mcp.Required(),
			mcp.Description("Spreadsheet URL or ID"),
		),
	)

	getValuesTool := mcp.NewTool("sheets_get_values",
		mcp.WithDescription("Read formatted cell values from a Google spreadsheet, optionally as records keyed by a header row"),
		mcp.WithString("spreadsheet",
			mcp.Required(),
			mcp.Description("Spreadsheet URL or ID"),
		),
		mcp.WithString("range",
			mcp.Description("A1 range such as 'Summary!A1:D20'. Defaults to the whole tab selected by pageIndex"),
		),
		mcp.WithNumber("pageIndex",
			mcp.Description("0-based tab index used when no range is given (default: 0)"),
		),
		mcp.WithNumber("headerRow",
			mcp.Description("1-based row holding column names; 0 names columns A, B, C. Returns records when set"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSheets,
			Operation: "list_tabs",
			ReadOnly:  true,
		}, listTabsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ref, err := common.Args(request.GetArguments()).RequiredString("spreadsheet")
			if err != nil {
				return common.ErrorResult("failed to list tabs", err), nil
			}
			tabs, err := sc.Sheets().Tabs(ctx, ref)
			if err != nil {
				return common.ErrorResult("failed to list tabs", err), nil
			}
			return common.JSONResult(tabs)
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSheets,
			Operation: "get_values",
			ReadOnly:  true,
		}, getValuesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, err := args.RequiredString("spreadsheet")
			if err != nil {
				return common.ErrorResult("failed to get values", err), nil
			}
			rangeA1, err := args.String("range")
			if err != nil {
				return common.ErrorResult("failed to get values", err), nil
			}
			pageIndex, err := args.Int("pageIndex", 0)
			if err != nil {
				return common.ErrorResult("failed to get values", err), nil
			}
			headerRow, err := args.Int("headerRow", -1)
			if err != nil {
				return common.ErrorResult("failed to get values", err), nil
			}

			sheet, err := sc.Sheets().GetSheet(ctx, ref, int(pageIndex), rangeA1)
			if err != nil {
				return common.ErrorResult("failed to get values", err), nil
			}
			if headerRow < 0 {
				return common.JSONResult(sheet)
			}

			table, err := sheets.NewTable(sheet, int(headerRow))
			if err != nil {
				return common.ErrorResult("failed to build records", err), nil
			}
			return common.JSONResult(map[string]interface{}{
				"spreadsheetId": sheet.SpreadsheetID,
				"range":         sheet.Range,
				"headers":       table.Headers,
				"records":       table.Records(),
			})
		}),
	}
}

func writeValueTools(sc *server.ServerContext) []mcpserver.ServerTool {
	updateValuesTool := mcp.NewTool("sheets_update_values",
		mcp.WithDescription("Write raw values into a range of a Google spreadsheet, or append them as new rows"),
		mcp.WithString("spreadsheet",
			mcp.Required(),
			mcp.Description("Spreadsheet URL or ID"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 range to write, e.g. 'Summary!A2'"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description("Rows of cells as a JSON array of arrays, e.g. [[\"north\", 12], [\"south\", 7]]"),
		),
		mcp.WithBoolean("append",
			mcp.Description("Insert the values as new rows after the table in range instead of overwriting (default: false)"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSheets,
			Operation: "update_values",
		}, updateValuesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, err := args.RequiredString("spreadsheet")
			if err != nil {
				return common.ErrorResult("failed to update values", err), nil
			}
			rangeA1, err := args.RequiredString("range")
			if err != nil {
				return common.ErrorResult("failed to update values", err), nil
			}
			values, err := args.Rows("values")
			if err != nil {
				return common.ErrorResult("failed to update values", err), nil
			}
			appendRows, err := args.Bool("append", false)
			if err != nil {
				return common.ErrorResult("failed to update values", err), nil
			}

			result, err := sc.Sheets().Update(ctx, ref, rangeA1, values, appendRows)
			if err != nil {
				return common.ErrorResult("failed to update values", err), nil
			}
			return common.JSONResult(result)
		}),
	}
}

// dimensionArgs decodes the arguments shared by the dimension tools.
func dimensionArgs(args common.Args) (ref string, sheetID int64, dim sheets.Dimension, start int64, err error) {
	if ref, err = args.RequiredString("spreadsheet"); err != nil {
		return
	}
	if sheetID, err = args.Int("sheetId", 0); err != nil {
		return
	}
	if sheetID < 0 {
		err = google.Invalid("sheetId", "must not be negative, got %d", sheetID)
		return
	}
	var s string
	if s, err = args.String("dimension"); err != nil {
		return
	}
	if dim, err = sheets.ParseDimension(s); err != nil {
		return
	}
	start, err = args.Int("start", 0)
	return
}
