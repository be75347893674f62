package mcptools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
)

// ProofAppendTool handles the proof_append MCP tool.
type ProofAppendTool struct {
	svc *service.Service
}

// NewProofAppendTool creates a ProofAppendTool.
func NewProofAppendTool(svc *service.Service) *ProofAppendTool {
	return &ProofAppendTool{svc: svc}
}

// Definition returns the MCP tool definition for proof_append.
func (t *ProofAppendTool) Definition() mcp.Tool {
	return mcp.NewTool("proof_append",
		mcp.WithDescription("Record a short piece of evidence that the user did something in one of the app's modules."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User the proof belongs to"),
		),
		mcp.WithString("module",
			mcp.Required(),
			mcp.Description("Originating module"),
			mcp.Enum(moduleNames()...),
		),
		mcp.WithString("short_text",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("What happened, at most %d characters", proof.MaxTextLength)),
		),
		mcp.WithString("source_id",
			mcp.Description("Optional ID of the originating record"),
		),
	)
}

// Handle processes the proof_append tool call.
func (t *ProofAppendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	module := req.GetString("module", "")
	text := req.GetString("short_text", "")

	if strings.TrimSpace(userID) == "" {
		return mcp.NewToolResultError("'user_id' is required"), nil
	}
	if module == "" {
		return mcp.NewToolResultError("'module' is required"), nil
	}

	p, err := t.svc.AppendProof(ctx, userID, proof.Module(module), text, req.GetString("source_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to append proof: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Proof saved: %q (%s)\nID: %s", p.ShortText, p.Module, p.ID)), nil
}

// ProofListTool handles the proof_list MCP tool.
type ProofListTool struct {
	svc *service.Service
}

// NewProofListTool creates a ProofListTool.
func NewProofListTool(svc *service.Service) *ProofListTool {
	return &ProofListTool{svc: svc}
}

// Definition returns the MCP tool definition for proof_list.
func (t *ProofListTool) Definition() mcp.Tool {
	return mcp.NewTool("proof_list",
		mcp.WithDescription("List a user's most recent proofs, newest first."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("User whose proofs to list"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Max results (default: %d, max: %d)", proof.DefaultListLimit, proof.MaxListLimit)),
		),
	)
}

// Handle processes the proof_list tool call.
func (t *ProofListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if strings.TrimSpace(userID) == "" {
		return mcp.NewToolResultError("'user_id' is required"), nil
	}

	proofs, err := t.svc.ListProofs(ctx, userID, intArg(req, "limit", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list proofs: %v", err)), nil
	}
	if len(proofs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No proofs recorded for %s yet.", userID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Recent proofs for %s\n", userID)
	for _, p := range proofs {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", p.Module, p.ShortText, p.CreatedAt.Format(time.DateTime))
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func moduleNames() []string {
	names := make([]string, 0, len(proof.Modules()))
	for _, m := range proof.Modules() {
		names = append(names, string(m))
	}
	return names
}
