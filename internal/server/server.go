// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the knowledge store, the model
// invokers, and the engine, and injects them into the tool handlers.
// No business logic lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/docent-ai/docent/internal/config"
	"github.com/docent-ai/docent/internal/engine"
	"github.com/docent-ai/docent/internal/knowledge"
	"github.com/docent-ai/docent/internal/llm"
	"github.com/docent-ai/docent/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the knowledge store's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, noop, err
	}

	store, err := knowledge.New(knowledge.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, noop, fmt.Errorf("creating knowledge store: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	gatekeeper, err := llm.NewClient(cfg.GatekeeperModel, cfg.BaseURL, cfg.APIKey)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating gatekeeper client: %w", err)
	}
	reference, err := llm.NewClient(cfg.ReferenceModel, cfg.BaseURL, cfg.APIKey)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating reference client: %w", err)
	}

	eng := engine.New(store, store, gatekeeper, reference)

	s := server.NewMCPServer(
		"docent",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	askTool := tools.NewAskTool(eng)
	s.AddTool(askTool.Definition(), askTool.Handle)

	loadTool := tools.NewLoadTool(store)
	s.AddTool(loadTool.Definition(), loadTool.Handle)

	sectionsTool := tools.NewSectionsTool(store)
	s.AddTool(sectionsTool.Definition(), sectionsTool.Handle)

	statsTool := tools.NewStatsTool(store)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used before the store exists.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use Docent effectively.
func serverInstructions() string {
	return `You have access to Docent, a two-layer knowledge assistant.

Docent answers questions from explicitly loaded documents. There is no
semantic search: documents are split into headed sections, a cheap
gatekeeper model picks the relevant section(s) from a directory of
descriptions, and a reference model answers strictly from that text.

## Tools
- load_document: load a markdown file into the knowledge base. Sections
  are split on H1 headings. Reloading a file replaces its sections.
- ask: ask a question. The gatekeeper either answers directly (general
  knowledge, high confidence) or consults the loaded sections. Grounded
  answers report which sections they used.
- list_sections: inspect the directory the gatekeeper routes on.
- kb_stats: section and source counts.

## Guidance
- Load documents before asking document-specific questions; with an
  empty knowledge base only direct answers are possible.
- If ask reports that a routing decision could not be understood,
  rephrase the question rather than retrying verbatim.
- Answers grounded in sections cite the section IDs — use list_sections
  to map IDs back to descriptions.`
}
