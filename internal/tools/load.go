package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docent-ai/docent/internal/knowledge"
)

// LoadTool handles the load_document MCP tool.
type LoadTool struct {
	store *knowledge.Store
}

// NewLoadTool creates a LoadTool.
func NewLoadTool(store *knowledge.Store) *LoadTool {
	return &LoadTool{store: store}
}

// Definition returns the MCP tool definition for load_document.
func (t *LoadTool) Definition() mcp.Tool {
	return mcp.NewTool("load_document",
		mcp.WithDescription(
			"Load a markdown document into the knowledge base. The document is "+
				"split into sections on H1 headings (H2 groups as fallback) and each "+
				"section becomes addressable reference material. Reloading a document "+
				"replaces its previous sections.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the markdown file to load"),
		),
	)
}

// Handle processes the load_document tool call.
func (t *LoadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(req.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}

	sections, err := knowledge.ChunkFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading document: %v", err)), nil
	}

	if err := t.store.UpsertSections(ctx, sourceName(path), sections); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving sections: %v", err)), nil
	}

	total, err := t.store.Count(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("counting sections: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Loaded %d sections from %q. Knowledge base now has %d sections.",
		len(sections), path, total,
	)), nil
}
