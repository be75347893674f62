package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
)

// ComputeTool handles the clarity_compute MCP tool.
type ComputeTool struct {
	svc *service.Service
}

// NewComputeTool creates a ComputeTool.
func NewComputeTool(svc *service.Service) *ComputeTool {
	return &ComputeTool{svc: svc}
}

// Definition returns the MCP tool definition for clarity_compute.
func (t *ComputeTool) Definition() mcp.Tool {
	return mcp.NewTool("clarity_compute",
		mcp.WithDescription(
			"Recompute a user's clarity score from the last 7 days of check-ins and 30 days of tasks and reflections, "+
				"smooth it into the fog value, and persist the new fog state.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User to compute for"),
		),
	)
}

// Handle processes the clarity_compute tool call.
func (t *ComputeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if strings.TrimSpace(userID) == "" {
		return mcp.NewToolResultError("'user_id' is required"), nil
	}

	res, err := t.svc.Compute(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute clarity: %v", err)), nil
	}
	r := res.Fog

	var b strings.Builder
	fmt.Fprintf(&b, "Clarity for %s: %.3f\n", userID, r.Score)
	fmt.Fprintf(&b, "Fog: %.3f (%s), previous %.3f from %s\n", r.State.FogValue, r.State.FogBucket, r.Previous, res.PrevSource)
	fmt.Fprintf(&b, "Sub-scores: checkins %.2f, recovery %.2f, alignment %.2f, reflection %.2f, consistency %.2f",
		r.Scores.Checkins, r.Scores.Recovery, r.Scores.Alignment, r.Scores.Reflection, r.Scores.Consistency)
	if n := len(res.Screen.Dropped); n > 0 {
		fmt.Fprintf(&b, "\nIgnored %d out-of-window records", n)
	}
	if !res.WriteQueued {
		fmt.Fprintf(&b, "\nNot persisted: %s", res.Eval.Reason)
	}
	return mcp.NewToolResultText(b.String()), nil
}
