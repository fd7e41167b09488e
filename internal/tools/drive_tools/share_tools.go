package drive_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/drive"
	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/tools/batch"
	"github.com/teemow/goopy/internal/tools/common"
)

func shareTools(sc *server.ServerContext) []mcpserver.ServerTool {
	shareFileTool := mcp.NewTool("drive_share_file",
		mcp.WithDescription("Share one or more Google Drive files by granting a permission"),
		mcp.WithString("files",
			mcp.Required(),
			mcp.Description("File URL or ID (string), or an array of them"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("The type of grantee: 'user', 'group', 'domain', or 'anyone'"),
		),
		mcp.WithString("role",
			mcp.Required(),
			mcp.Description("The role to grant: 'organizer', 'fileOrganizer', 'writer', 'commenter', or 'reader'"),
		),
		mcp.WithString("emailAddress",
			mcp.Description("Email address (required if type is 'user' or 'group')"),
		),
		mcp.WithString("domain",
			mcp.Description("Domain name (required if type is 'domain')"),
		),
		mcp.WithBoolean("sendNotificationEmail",
			mcp.Description("Send a notification email to the grantee (default: false)"),
		),
		mcp.WithString("emailMessage",
			mcp.Description("Custom message to include in the notification email"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceDrive,
			Operation: "share_file",
		}, shareFileTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())

			refs, err := args.StringOrArray("files")
			if err != nil {
				return common.ErrorResult("failed to share files", err), nil
			}
			options, err := shareOptions(args)
			if err != nil {
				return common.ErrorResult("failed to share files", err), nil
			}

			summary := batch.Run(ctx, refs, func(ctx context.Context, ref string) (interface{}, error) {
				return sc.Drive().ShareFile(ctx, ref, options)
			})
			return common.JSONResult(summary)
		}),
	}
}

func shareOptions(args common.Args) (*drive.ShareOptions, error) {
	options := &drive.ShareOptions{}
	var err error
	if options.Type, err = args.RequiredString("type"); err != nil {
		return nil, err
	}
	if options.Role, err = args.RequiredString("role"); err != nil {
		return nil, err
	}
	if options.EmailAddress, err = args.String("emailAddress"); err != nil {
		return nil, err
	}
	if options.Domain, err = args.String("domain"); err != nil {
		return nil, err
	}
	if options.SendNotificationEmail, err = args.Bool("sendNotificationEmail", false); err != nil {
		return nil, err
	}
	if options.EmailMessage, err = args.String("emailMessage"); err != nil {
		return nil, err
	}
	return options, nil
}
