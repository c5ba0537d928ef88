// Package tools provides Docent's MCP tool handlers.
//
// Each handler follows the same pattern:
// - A struct with dependencies injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/docent-ai/docent/internal/engine"
)

// Answerer is the engine capability the ask tool depends on.
// Abstracted for testability.
type Answerer interface {
	Answer(ctx context.Context, query string) (*engine.Response, error)
}

// AskTool handles the ask MCP tool.
type AskTool struct {
	engine Answerer
}

// NewAskTool creates an AskTool.
func NewAskTool(eng Answerer) *AskTool {
	return &AskTool{engine: eng}
}

// Definition returns the MCP tool definition for ask.
func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription(
			"Ask the knowledge assistant a question. Simple questions are answered "+
				"directly; questions about loaded documents are answered from the "+
				"relevant knowledge sections, with the grounding sections reported.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
	)
}

// Handle processes the ask tool call.
func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	resp, err := t.engine.Answer(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(userMessage(err)), nil
	}

	var b strings.Builder
	b.WriteString(resp.Text)
	if len(resp.Sections) > 0 {
		fmt.Fprintf(&b, "\n\n(grounded in: %s", strings.Join(resp.Sections, ", "))
		if resp.Degraded {
			b.WriteString("; raw reference answer, synthesis unavailable")
		}
		b.WriteString(")")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// userMessage maps engine errors to messages a caller can act on:
// parse errors ask for a rephrase, resolution errors name the missing
// section, invocation errors name the failing stage.
func userMessage(err error) string {
	var parseErr *engine.DecisionParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("the routing decision could not be understood (%s) — please rephrase the question", parseErr.Reason)
	}

	var chunkErr *engine.ChunkResolutionError
	if errors.As(err, &chunkErr) {
		return fmt.Sprintf("knowledge section %q could not be loaded — the knowledge base may have changed", chunkErr.Section)
	}

	var invokeErr *engine.InvocationError
	if errors.As(err, &invokeErr) {
		return fmt.Sprintf("the %s model call failed: %v", invokeErr.Stage, invokeErr.Err)
	}

	return err.Error()
}
