package handoff_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/handoff/internal/identity"
	"github.com/teemow/handoff/internal/instrumentation"
	"github.com/teemow/handoff/internal/logging"
	"github.com/teemow/handoff/internal/server"
	"github.com/teemow/handoff/internal/tools/batch"
	"github.com/teemow/handoff/internal/tools/common"
)

func registerMappingReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	lookupTool := mcp.NewTool(ToolLookupParticipant,
		mcp.WithDescription("Look up the recorded handoff folder and owner of one or more participants"),
		mcp.WithString("emails",
			mcp.Required(),
			mcp.Description("Participant email or JSON array of emails. Emails are matched exactly."),
		),
	)
	add(s, sc, lookupTool, lookupHandler(sc))

	listTool := mcp.NewTool(ToolListMappings,
		mcp.WithDescription("List every participant with a recorded handoff folder"),
	)
	add(s, sc, listTool, listHandler(sc))
}

func registerMappingWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	forgetTool := mcp.NewTool(ToolForgetParticipant,
		mcp.WithDescription("Remove the folder record of one or more participants. The Drive folder itself is kept; the next scan provisions a new folder."),
		mcp.WithString("emails",
			mcp.Required(),
			mcp.Description("Participant email or JSON array of emails"),
		),
	)
	add(s, sc, forgetTool, forgetHandler(sc))
}

func lookupHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		emails, err := batch.ParseStringOrArray(request.GetArguments()["emails"], "emails")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		results := batch.ProcessBatch(emails, func(email string) (any, error) {
			rec, err := sc.Workflow().Lookup(ctx, email)
			if errors.Is(err, identity.ErrNotFound) {
				return nil, fmt.Errorf("no folder recorded")
			}
			if err != nil {
				return nil, err
			}
			return rec, nil
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}

func listHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mappings, err := sc.Workflow().Mappings(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list mappings: %v", err)), nil
		}
		if mappings == nil {
			mappings = []identity.Mapping{}
		}
		return jsonResult(mappings), nil
	}
}

func forgetHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		emails, err := batch.ParseStringOrArray(request.GetArguments()["emails"], "emails")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		wf := sc.Workflow()
		results := batch.ProcessBatch(emails, func(email string) (any, error) {
			rec, err := wf.Lookup(ctx, email)
			if errors.Is(err, identity.ErrNotFound) {
				return nil, fmt.Errorf("no folder recorded")
			}
			if err != nil {
				return nil, err
			}
			if err := wf.Forget(ctx, email); err != nil {
				return nil, err
			}
			sc.AuditLogger().Record(ctx, instrumentation.SideEffect{
				Action:      instrumentation.ActionRecordPruned,
				Participant: email,
				Target:      rec.FolderID,
				Detail:      ToolForgetParticipant,
			})
			sc.Logger().Info("Forgot participant mapping",
				logging.Tool(ToolForgetParticipant), logging.Participant(email), logging.Folder(rec.FolderID))
			return rec, nil
		})

		return mcp.NewToolResultText(batch.FormatResults(results)), nil
	}
}
