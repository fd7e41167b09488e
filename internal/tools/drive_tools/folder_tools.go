package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/tools/common"
)

func folderTools(sc *server.ServerContext) []mcpserver.ServerTool {
	listFolderTool := mcp.NewTool("drive_list_folder",
		mcp.WithDescription("List the files in a Google Drive folder, across every page and shared drive"),
		mcp.WithString("folder",
			mcp.Required(),
			mcp.Description("Folder URL (e.g. https://drive.google.com/drive/folders/...) or folder ID"),
		),
		mcp.WithString("mimeType",
			mcp.Description("Only return files of this MIME type (e.g. 'application/vnd.google-apps.spreadsheet')"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceDrive,
			Operation: "list_folder",
			ReadOnly:  true,
		}, listFolderTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())

			folder, err := args.RequiredString("folder")
			if err != nil {
				return common.ErrorResult("failed to list folder", err), nil
			}
			mimeType, err := args.String("mimeType")
			if err != nil {
				return common.ErrorResult("failed to list folder", err), nil
			}

			files, err := sc.Drive().ListFolder(ctx, folder, mimeType)
			if err != nil {
				return common.ErrorResult("failed to list folder", err), nil
			}

			return common.JSONResult(map[string]interface{}{
				"count": len(files),
				"files": files,
			})
		}),
	}
}
