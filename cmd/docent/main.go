// Docent: two-layer agentic knowledge assistant
//
// A gatekeeper model routes each question either to a direct answer or
// to reference evaluation grounded in explicitly loaded document
// sections. No embeddings, no semantic search — the knowledge directory
// is the only retrieval mechanism.
//
// Usage:
//
//	docent chat            # Interactive question loop
//	docent load <file.md>  # Load a markdown document
//	docent serve           # Start MCP server (stdio transport)
//	docent update          # Update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docent-ai/docent/internal/chat"
	"github.com/docent-ai/docent/internal/config"
	"github.com/docent-ai/docent/internal/engine"
	"github.com/docent-ai/docent/internal/knowledge"
	"github.com/docent-ai/docent/internal/llm"
	"github.com/docent-ai/docent/internal/server"
	"github.com/docent-ai/docent/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		if err := runChat(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "load":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: docent load <file.md>")
			os.Exit(1)
		}
		if err := runLoad(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("docent v%s\n", server.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runServe starts the MCP stdio server.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, cleanup, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return mcpserver.ServeStdio(s)
}

// runChat starts the interactive question loop.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := knowledge.New(knowledge.Config{DataDir: cfg.DataDir})
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}
	defer func() { _ = store.Close() }()

	gatekeeper, err := llm.NewClient(cfg.GatekeeperModel, cfg.BaseURL, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("creating gatekeeper client: %w", err)
	}
	reference, err := llm.NewClient(cfg.ReferenceModel, cfg.BaseURL, cfg.APIKey)
	if err != nil {
		return fmt.Errorf("creating reference client: %w", err)
	}

	eng := engine.New(store, store, gatekeeper, reference)
	session := chat.NewSession(store, eng, os.Stdin, os.Stdout, os.Stderr)

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return session.Run(ctx)
}

// runLoad ingests a document without entering the chat loop.
func runLoad(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := knowledge.New(knowledge.Config{DataDir: cfg.DataDir})
	if err != nil {
		return fmt.Errorf("opening knowledge store: %w", err)
	}
	defer func() { _ = store.Close() }()

	sections, err := knowledge.ChunkFile(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := store.UpsertSections(ctx, filepath.Base(path), sections); err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✅ Loaded %d sections from %q (knowledge base: %d total)\n",
		len(sections), path, total)
	return nil
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Network failures are silent.
func checkForUpdates() {
	status := updater.CheckVersion(server.Version)
	if status.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: docent update\n"+
				"     Release: %s\n\n",
			status.CurrentVersion, status.LatestVersion, status.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	status := updater.CheckVersion(server.Version)
	if !status.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", status.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", status.CurrentVersion, status.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(server.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", status.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", status.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart docent to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Docent v%s — two-layer agentic knowledge assistant

Usage:
  docent chat            Interactive question loop (load <file.md>, sections, help, quit)
  docent load <file.md>  Load a markdown document into the knowledge base
  docent serve           Start the MCP server (stdio transport)
  docent update          Update to the latest version

Configuration (environment or ~/.docent/config.json):
  DOCENT_API_KEY / OPENROUTER_API_KEY   API key for the model endpoint (required)
  DOCENT_BASE_URL                       OpenAI-compatible endpoint (default: OpenRouter)
  DOCENT_GATEKEEPER_MODEL               Cheap routing/synthesis model
  DOCENT_REFERENCE_MODEL                Capable grounded-evaluation model
  DOCENT_DATA_DIR                       Data directory (default: ~/.docent)
`, server.Version)
}
