package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docent-ai/docent/internal/knowledge"
)

// StatsTool handles the kb_stats MCP tool.
type StatsTool struct {
	store *knowledge.Store
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(store *knowledge.Store) *StatsTool {
	return &StatsTool{store: store}
}

// Definition returns the MCP tool definition for kb_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("kb_stats",
		mcp.WithDescription("Show knowledge base statistics: section count and loaded source documents."),
	)
}

// Handle processes the kb_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := t.store.Count(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("counting sections: %v", err)), nil
	}
	sources, err := t.store.Sources(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing sources: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sections: %d\nSources:  %d\n", count, len(sources))
	for _, src := range sources {
		fmt.Fprintf(&b, "  - %s\n", src)
	}
	return mcp.NewToolResultText(b.String()), nil
}
