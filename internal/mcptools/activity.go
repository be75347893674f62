package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
)

// ActivityRecordTool handles the activity_record MCP tool.
type ActivityRecordTool struct {
	svc *service.Service
}

// NewActivityRecordTool creates an ActivityRecordTool.
func NewActivityRecordTool(svc *service.Service) *ActivityRecordTool {
	return &ActivityRecordTool{svc: svc}
}

// Definition returns the MCP tool definition for activity_record.
func (t *ActivityRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("activity_record",
		mcp.WithDescription(
			"Record one piece of user activity that feeds the clarity score: an emotion check-in, "+
				"a completed task, or a journal reflection.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User the activity belongs to"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("What to record"),
			mcp.Enum("check_in", "task", "reflection"),
		),
		mcp.WithString("emotion",
			mcp.Description("Emotion label, required for check_in"),
		),
		mcp.WithString("text",
			mcp.Description("Reflection text, required for reflection"),
		),
		mcp.WithString("at",
			mcp.Description("RFC 3339 timestamp (default: now)"),
		),
	)
}

// Handle processes the activity_record tool call.
func (t *ActivityRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if strings.TrimSpace(userID) == "" {
		return mcp.NewToolResultError("'user_id' is required"), nil
	}
	at, err := timeArg(req, "at")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("'at' must be RFC 3339: %v", err)), nil
	}

	kind := req.GetString("kind", "")
	var id string
	switch kind {
	case "check_in":
		id, err = t.svc.RecordCheckIn(ctx, userID, at, req.GetString("emotion", ""))
	case "task":
		id, err = t.svc.RecordTask(ctx, userID, at)
	case "reflection":
		id, err = t.svc.RecordReflection(ctx, userID, req.GetString("text", ""), at)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q: use check_in, task, or reflection", kind)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record %s: %v", kind, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Recorded %s for %s\nID: %s", kind, userID, id)), nil
}
