package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docent-ai/docent/internal/knowledge"
)

// SectionsTool handles the list_sections MCP tool.
type SectionsTool struct {
	store *knowledge.Store
}

// NewSectionsTool creates a SectionsTool.
func NewSectionsTool(store *knowledge.Store) *SectionsTool {
	return &SectionsTool{store: store}
}

// Definition returns the MCP tool definition for list_sections.
func (t *SectionsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_sections",
		mcp.WithDescription(
			"List the knowledge directory: every loaded section's ID and "+
				"description. This is the same lean view the gatekeeper routes on.",
		),
	)
}

// Handle processes the list_sections tool call.
func (t *SectionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := t.store.Summary(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sections: %v", err)), nil
	}

	if len(summary) == 0 {
		return mcp.NewToolResultText("The knowledge base is empty. Use load_document to add a markdown file."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d sections:\n\n", len(summary))
	for _, info := range summary {
		fmt.Fprintf(&b, "  %s — %s\n", info.ID, info.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}
