package handoff_tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/handoff/internal/server"
	"github.com/teemow/handoff/internal/tools/common"
)

// Tool names.
const (
	ToolScanCalendar      = "handoff_scan_calendar"
	ToolProcessSubmission = "handoff_process_submission"
	ToolLookupParticipant = "handoff_lookup_participant"
	ToolListMappings      = "handoff_list_mappings"
	ToolForgetParticipant = "handoff_forget_participant"
)

// RegisterHandoffTools registers the handoff tools with the MCP server.
// In read-only mode only tools that never write are registered.
func RegisterHandoffTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("MCP server and server context are required")
	}

	registerMappingReadTools(s, sc)

	if readOnly {
		return nil
	}

	registerScanTools(s, sc)
	registerSubmissionTools(s, sc)
	registerMappingWriteTools(s, sc)
	return nil
}

func add(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, handler common.ToolHandler) {
	s.AddTool(tool, common.InstrumentedToolHandler(tool.Name, sc, handler))
}

func jsonResult(v any) *mcp.CallToolResult {
	result, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(result))
}

// errorResultWith reports err and, when present, the partial outcome.
func errorResultWith(prefix string, err error, partial any) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s: %v", prefix, err)
	if partial != nil {
		details, _ := json.MarshalIndent(partial, "", "  ")
		msg += "\n\nPartial result:\n" + string(details)
	}
	return mcp.NewToolResultError(msg)
}
