// Package chat implements the interactive command loop for Docent.
//
// The loop accepts a handful of commands (load, sections, help, quit);
// anything else is treated as a question and routed through the engine.
// Answers go to stdout; status lines go to stderr so output stays
// pipeable.
package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docent-ai/docent/internal/engine"
	"github.com/docent-ai/docent/internal/knowledge"
)

// Answerer is the engine capability the chat loop depends on.
// Abstracted for testability.
type Answerer interface {
	Answer(ctx context.Context, query string) (*engine.Response, error)
}

// Session is one interactive chat session.
type Session struct {
	store  *knowledge.Store
	engine Answerer
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewSession creates a chat session reading from in and writing answers
// to out and status lines to errOut.
func NewSession(store *knowledge.Store, eng Answerer, in io.Reader, out, errOut io.Writer) *Session {
	return &Session{store: store, engine: eng, in: in, out: out, errOut: errOut}
}

// Run processes input lines until EOF, a quit command, or context
// cancellation.
func (s *Session) Run(ctx context.Context) error {
	count, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("chat: reading knowledge base: %w", err)
	}
	fmt.Fprintf(s.errOut, "📁 Knowledge base has %d sections\n", count)
	fmt.Fprintf(s.errOut, "💬 Ready! Ask me anything, or 'load <file.md>' to add knowledge. 'help' lists commands.\n")

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(s.errOut, "\n> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case isQuit(line):
			fmt.Fprintln(s.errOut, "👋 Goodbye!")
			return nil
		case strings.EqualFold(line, "help"):
			s.printHelp()
		case strings.EqualFold(line, "sections"):
			s.printSections(ctx)
		case strings.HasPrefix(strings.ToLower(line), "load "):
			s.loadDocument(ctx, strings.TrimSpace(line[5:]))
		default:
			s.answer(ctx, line)
		}
	}
	return scanner.Err()
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func (s *Session) printHelp() {
	fmt.Fprint(s.errOut, `Commands:
  load <file.md>  - Load a markdown document
  sections        - List loaded knowledge sections
  help            - Show this help
  quit            - Exit
  <question>      - Ask a question
`)
}

func (s *Session) printSections(ctx context.Context) {
	summary, err := s.store.Summary(ctx)
	if err != nil {
		fmt.Fprintf(s.errOut, "❌ Listing sections: %v\n", err)
		return
	}
	if len(summary) == 0 {
		fmt.Fprintln(s.errOut, "📝 No knowledge loaded yet. Use 'load <file.md>' first.")
		return
	}
	for _, info := range summary {
		fmt.Fprintf(s.out, "%s — %s\n", info.ID, info.Description)
	}
}

func (s *Session) loadDocument(ctx context.Context, path string) {
	if path == "" {
		fmt.Fprintln(s.errOut, "❌ Usage: load <file.md>")
		return
	}
	fmt.Fprintf(s.errOut, "📖 Loading %s...\n", path)

	sections, err := knowledge.ChunkFile(path)
	if err != nil {
		fmt.Fprintf(s.errOut, "❌ %v\n", err)
		return
	}
	if err := s.store.UpsertSections(ctx, sourceName(path), sections); err != nil {
		fmt.Fprintf(s.errOut, "❌ Saving sections: %v\n", err)
		return
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		fmt.Fprintf(s.errOut, "❌ Counting sections: %v\n", err)
		return
	}
	fmt.Fprintf(s.errOut, "✅ Loaded %d sections from %q (knowledge base: %d total)\n",
		len(sections), path, total)
}

func (s *Session) answer(ctx context.Context, query string) {
	fmt.Fprintln(s.errOut, "🤔 Thinking...")

	resp, err := s.engine.Answer(ctx, query)
	if err != nil {
		fmt.Fprintf(s.errOut, "❌ %s\n", friendlyError(err))
		return
	}

	fmt.Fprintf(s.out, "\n💡 %s\n", resp.Text)
	if len(resp.Sections) > 0 {
		fmt.Fprintf(s.errOut, "   (grounded in: %s)\n", strings.Join(resp.Sections, ", "))
	}
	if resp.Degraded {
		fmt.Fprintln(s.errOut, "   (synthesis unavailable — showing the reference answer as-is)")
	}
}

// friendlyError maps engine errors to actionable messages without losing
// which stage or section failed.
func friendlyError(err error) string {
	var parseErr *engine.DecisionParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("I couldn't understand my own routing decision (%s). Please try rephrasing your question.", parseErr.Reason)
	}

	var chunkErr *engine.ChunkResolutionError
	if errors.As(err, &chunkErr) {
		return fmt.Sprintf("I wanted to check section %q but it couldn't be loaded from the knowledge base.", chunkErr.Section)
	}

	var invokeErr *engine.InvocationError
	if errors.As(err, &invokeErr) {
		return fmt.Sprintf("The %s model call failed: %v", invokeErr.Stage, invokeErr.Err)
	}

	return err.Error()
}

// sourceName normalizes a document path into the source key sections are
// stored under.
func sourceName(path string) string {
	return filepath.Base(path)
}
