package slides_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/goopy/internal/instrumentation"
	"github.com/teemow/goopy/internal/server"
	"github.com/teemow/goopy/internal/slides"
	"github.com/teemow/goopy/internal/tools/common"
)

// RegisterSlidesTools registers the Slides tools. Write tools are only added
// when the server context allows writes.
func RegisterSlidesTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	s.AddTools(Tools(sc)...)
}

// Tools returns the Slides tools available under sc.
func Tools(sc *server.ServerContext) []mcpserver.ServerTool {
	tools := readTools(sc)
	if sc.AllowWrites() {
		tools = append(tools, writeTools(sc)...)
	}
	return tools
}

func readTools(sc *server.ServerContext) []mcpserver.ServerTool {
	getPresentationTool := mcp.NewTool("slides_get_presentation",
		mcp.WithDescription("Get the slides of a Google Slides presentation with their elements and speaker notes"),
		mcp.WithString("presentation",
			mcp.Required(),
			mcp.Description("Presentation URL or ID"),
		),
		mcp.WithString("fields",
			mcp.Description("Field mask for the request (default: '"+slides.DefaultFields+"')"),
		),
	)

	tagsTool := mcp.NewTool("slides_speaker_note_tags",
		mcp.WithDescription("Map each #hashtag found in speaker notes to the IDs of the slides carrying it"),
		mcp.WithString("presentation",
			mcp.Required(),
			mcp.Description("Presentation URL or ID"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSlides,
			Operation: "get_presentation",
			ReadOnly:  true,
		}, getPresentationTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, err := args.RequiredString("presentation")
			if err != nil {
				return common.ErrorResult("failed to get presentation", err), nil
			}
			fields, err := args.String("fields")
			if err != nil {
				return common.ErrorResult("failed to get presentation", err), nil
			}

			p, err := sc.Slides().GetPresentation(ctx, ref, fields)
			if err != nil {
				return common.ErrorResult("failed to get presentation", err), nil
			}
			return common.JSONResult(p)
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSlides,
			Operation: "speaker_note_tags",
			ReadOnly:  true,
		}, tagsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ref, err := common.Args(request.GetArguments()).RequiredString("presentation")
			if err != nil {
				return common.ErrorResult("failed to read speaker notes", err), nil
			}

			p, err := sc.Slides().GetPresentation(ctx, ref, "")
			if err != nil {
				return common.ErrorResult("failed to read speaker notes", err), nil
			}
			return common.JSONResult(map[string]interface{}{
				"presentationId": p.ID,
				"tags":           slides.TagsFromSpeakerNotes(p.Slides),
			})
		}),
	}
}

func writeTools(sc *server.ServerContext) []mcpserver.ServerTool {
	replaceTextTool := mcp.NewTool("slides_replace_text",
		mcp.WithDescription("Replace every occurrence of a placeholder on all slides of a presentation"),
		mcp.WithString("presentation",
			mcp.Required(),
			mcp.Description("Presentation URL or ID"),
		),
		mcp.WithString("newText",
			mcp.Required(),
			mcp.Description("Replacement text"),
		),
		mcp.WithString("findText",
			mcp.Description("Text to find, matched case-insensitively (default: '"+slides.DefaultFindText+"')"),
		),
	)

	deleteObjectsTool := mcp.NewTool("slides_delete_objects",
		mcp.WithDescription("Delete slides or page elements from a presentation in one batch"),
		mcp.WithString("presentation",
			mcp.Required(),
			mcp.Description("Presentation URL or ID"),
		),
		mcp.WithString("objectIds",
			mcp.Required(),
			mcp.Description("Object ID (string) or array of object IDs of slides or page elements"),
		),
	)

	deleteTaggedTool := mcp.NewTool("slides_delete_tagged_slides",
		mcp.WithDescription("Delete every slide whose speaker notes carry a #hashtag"),
		mcp.WithString("presentation",
			mcp.Required(),
			mcp.Description("Presentation URL or ID"),
		),
		mcp.WithString("tag",
			mcp.Required(),
			mcp.Description("Hashtag such as '#appendix'; the leading '#' is optional"),
		),
	)

	return []mcpserver.ServerTool{
		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSlides,
			Operation: "replace_text",
		}, replaceTextTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, err := args.RequiredString("presentation")
			if err != nil {
				return common.ErrorResult("failed to replace text", err), nil
			}
			newText, err := args.String("newText")
			if err != nil {
				return common.ErrorResult("failed to replace text", err), nil
			}
			findText, err := args.String("findText")
			if err != nil {
				return common.ErrorResult("failed to replace text", err), nil
			}

			changed, err := sc.Slides().ReplaceText(ctx, ref, newText, findText)
			if err != nil {
				return common.ErrorResult("failed to replace text", err), nil
			}
			return common.JSONResult(map[string]int64{"occurrencesChanged": changed})
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSlides,
			Operation: "delete_objects",
		}, deleteObjectsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, err := args.RequiredString("presentation")
			if err != nil {
				return common.ErrorResult("failed to delete objects", err), nil
			}
			ids, err := args.StringOrArray("objectIds")
			if err != nil {
				return common.ErrorResult("failed to delete objects", err), nil
			}

			result, err := sc.Slides().DeleteObjects(ctx, ref, ids)
			if err != nil {
				return common.ErrorResult("failed to delete objects", err), nil
			}
			return common.JSONResult(result)
		}),

		common.NewServerTool(sc, common.ToolSpec{
			Service:   instrumentation.ServiceSlides,
			Operation: "delete_tagged_slides",
		}, deleteTaggedTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := common.Args(request.GetArguments())
			ref, err := args.RequiredString("presentation")
			if err != nil {
				return common.ErrorResult("failed to delete tagged slides", err), nil
			}
			tag, err := args.RequiredString("tag")
			if err != nil {
				return common.ErrorResult("failed to delete tagged slides", err), nil
			}

			deleted, err := sc.Slides().DeleteTaggedSlides(ctx, ref, tag)
			if err != nil {
				return common.ErrorResult("failed to delete tagged slides", err), nil
			}
			if deleted == nil {
				deleted = []string{}
			}
			return common.JSONResult(map[string]interface{}{"deleted": deleted})
		}),
	}
}
