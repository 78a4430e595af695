package handoff_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/server"
	"github.com/teemow/handoff/internal/tools/common"
)

func registerScanTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	scanTool := mcp.NewTool(ToolScanCalendar,
		mcp.WithDescription("Scan calendar events in a time window and provision one shared Drive folder per participant pair. Existing folders are reused, deleted ones are recreated."),
		mcp.WithString("calendarId",
			mcp.Description("Calendar to scan (default: the configured calendar)"),
		),
		mcp.WithString("from",
			mcp.Description("Window start in RFC3339 format (default: now)"),
		),
		mcp.WithString("to",
			mcp.Description("Window end in RFC3339 format (default: start plus 'days')"),
		),
		mcp.WithNumber("days",
			mcp.Description("Window length in days when 'to' is not given (default: 7)"),
		),
	)

	add(s, sc, scanTool, scanHandler(sc))
}

func scanHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		window, err := windowFromArgs(sc, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		report, err := sc.RunScan(ctx, common.StringArg(args, "calendarId"), window)
		if err != nil {
			var partial any
			if report != nil {
				partial = report
			}
			return errorResultWith("Calendar scan failed", err, partial), nil
		}

		return jsonResult(report), nil
	}
}

// windowFromArgs builds the scan window from the from/to/days arguments,
// starting from the server's default window.
func windowFromArgs(sc *server.ServerContext, args map[string]any) (handoff.Window, error) {
	window := sc.DefaultWindow()
	length := window.End.Sub(window.Start)

	from, err := common.TimeArg(args, "from")
	if err != nil {
		return handoff.Window{}, err
	}
	to, err := common.TimeArg(args, "to")
	if err != nil {
		return handoff.Window{}, err
	}
	days, err := common.IntArg(args, "days", 0)
	if err != nil {
		return handoff.Window{}, err
	}
	if days < 0 {
		return handoff.Window{}, fmt.Errorf("days must not be negative")
	}
	if days > 0 {
		if !to.IsZero() {
			return handoff.Window{}, fmt.Errorf("use either 'to' or 'days', not both")
		}
		length = time.Duration(days) * 24 * time.Hour
	}

	if !from.IsZero() {
		window.Start = from
	}
	window.End = window.Start.Add(length)
	if !to.IsZero() {
		window.End = to
	}

	if err := window.Validate(); err != nil {
		return handoff.Window{}, err
	}
	return window, nil
}
