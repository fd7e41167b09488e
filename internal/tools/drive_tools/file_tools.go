package drive_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/drive"
	"github.com/teemow/goopy/internal/google"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/tools/batch"
	"github.com/teemow/goopy/internal/tools/common"
)

// fileResult is returned by the tools that create a file.
type fileResult struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

func fileTools(sc *server.ServerContext) []mcpserver.ServerTool {
	getFileTool := mcp.NewTool("drive_get_file",
		mcp.WithDescription("Get metadata for one or more files in Google Drive"),
		mcp.WithString("files",
			mcp.Required(),
			mcp.Description("File URL or ID (string), or an array of them"),
		),
	)

	accessLinkTool := mcp.NewTool("drive_access_link",
		mcp.WithDescription("Build the sharing link for one or more Google Drive files without calling the API"),
		mcp.WithString("files",
			mcp.Required(),
			mcp.Description("File URL or ID (string), or an array of them"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceDrive,
			Operation: "get_file",
			ReadOnly:  true,
		}, getFileTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			refs, err := common.Args(request.GetArguments()).StringOrArray("files")
			if err != nil {
				return common.ErrorResult("failed to get files", err), nil
			}

			if len(refs) == 1 {
				info, err := sc.Drive().GetFile(ctx, refs[0])
				if err != nil {
					return common.ErrorResult("failed to get file", err), nil
				}
				return common.JSONResult(info)
			}

			return common.JSONResult(batch.Run(ctx, refs, func(ctx context.Context, ref string) (interface{}, error) {
				return sc.Drive().GetFile(ctx, ref)
			}))
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceDrive,
			Operation: "access_link",
			ReadOnly:  true,
			Local:     true,
		}, accessLinkTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			refs, err := common.Args(request.GetArguments()).StringOrArray("files")
			if err != nil {
				return common.ErrorResult("failed to build access link", err), nil
			}

			summary := batch.Run(ctx, refs, func(_ context.Context, ref string) (interface{}, error) {
				id, err := google.ExtractID(ref)
				if err != nil {
					return nil, err
				}
				return drive.AccessLink(id), nil
			})
			return common.JSONResult(summary)
		}),
	}
}

func writeFileTools(sc *server.ServerContext) []mcpserver.ServerTool {
	createFileTool := mcp.NewTool("drive_create_file",
		mcp.WithDescription("Create an empty Google document, spreadsheet, presentation, form, drawing or folder inside a folder"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the new file"),
		),
		mcp.WithString("fileType",
			mcp.Required(),
			mcp.Description("One of: "+strings.Join(drive.FileTypes(), ", ")),
		),
		mcp.WithString("folder",
			mcp.Required(),
			mcp.Description("Parent folder URL or ID"),
		),
	)

	copyFileTool := mcp.NewTool("drive_copy_file",
		mcp.WithDescription("Copy a Google Drive file into a folder under a new title"),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("URL or ID of the file to copy"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the copy"),
		),
		mcp.WithString("folder",
			mcp.Required(),
			mcp.Description("Destination folder URL or ID"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceDrive,
			Operation: "create_file",
		}, createFileTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			name, err := args.RequiredString("name")
			if err != nil {
				return common.ErrorResult("failed to create file", err), nil
			}
			fileType, err := args.RequiredString("fileType")
			if err != nil {
				return common.ErrorResult("failed to create file", err), nil
			}
			folder, err := args.RequiredString("folder")
			if err != nil {
				return common.ErrorResult("failed to create file", err), nil
			}

			id, err := sc.Drive().CreateFile(ctx, name, fileType, folder)
			if err != nil {
				return common.ErrorResult("failed to create file", err), nil
			}
			return common.JSONResult(fileResult{ID: id, Link: drive.AccessLink(id)})
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceDrive,
			Operation: "copy_file",
		}, copyFileTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			file, err := args.RequiredString("file")
			if err != nil {
				return common.ErrorResult("failed to copy file", err), nil
			}
			title, err := args.RequiredString("title")
			if err != nil {
				return common.ErrorResult("failed to copy file", err), nil
			}
			folder, err := args.RequiredString("folder")
			if err != nil {
				return common.ErrorResult("failed to copy file", err), nil
			}

			id, err := sc.Drive().CopyFile(ctx, title, file, folder)
			if err != nil {
				return common.ErrorResult("failed to copy file", err), nil
			}
			return common.JSONResult(fileResult{ID: id, Link: drive.AccessLink(id)})
		}),
	}
}
