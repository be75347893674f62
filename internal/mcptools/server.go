package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
)

const instructions = `Clarity tracks how "foggy" a user feels from their recent activity.
Record activity with activity_record, then call clarity_compute to refresh the fog state.
Use proof_append to log small wins and proof_list to read them back.`

// NewServer builds an MCP server exposing every clarity tool.
func NewServer(svc *service.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"clarity",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	computeTool := NewComputeTool(svc)
	s.AddTool(computeTool.Definition(), computeTool.Handle)

	activityTool := NewActivityRecordTool(svc)
	s.AddTool(activityTool.Definition(), activityTool.Handle)

	appendTool := NewProofAppendTool(svc)
	s.AddTool(appendTool.Definition(), appendTool.Handle)

	listTool := NewProofListTool(svc)
	s.AddTool(listTool.Definition(), listTool.Handle)

	return s
}
