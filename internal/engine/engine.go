// Package engine implements Docent's decision-and-dispatch core.
//
// One request flows through a short pipeline: the gatekeeper model
// decides whether to answer directly or delegate to reference material;
// a delegation resolves its scoped chunks, gets a grounded factual answer
// from the reference model, and has it synthesized back into a
// conversational reply. The engine holds no state between requests.
package engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/docent-ai/docent/internal/knowledge"
	"github.com/docent-ai/docent/internal/llm"
)

// Directory supplies the lean section summary the gatekeeper routes on.
// Read-only during request processing; safe for concurrent requests.
type Directory interface {
	Summary(ctx context.Context) ([]knowledge.SectionInfo, error)
}

// ChunkResolver resolves a section ID to its full chunk text.
type ChunkResolver interface {
	Resolve(ctx context.Context, sectionID string) (string, error)
}

// ReferenceResult is the grounded factual output of one delegation,
// consumed exactly once by synthesis.
type ReferenceResult struct {
	SectionIDs    []string
	FactualAnswer string
}

// Response is the final artifact returned to the caller.
type Response struct {
	// Text is the answer shown to the user.
	Text string
	// Direct is true when the gatekeeper answered without delegation.
	Direct bool
	// Sections lists the section IDs the answer was grounded in, in
	// scope order. Empty for direct answers.
	Sections []string
	// Degraded is true when synthesis failed and Text is the reference
	// evaluator's raw factual answer instead.
	Degraded bool
}

// Engine routes queries between the gatekeeper and reference evaluators.
type Engine struct {
	directory   Directory
	chunks      ChunkResolver
	gatekeeper  llm.Invoker
	reference   llm.Invoker
	synthesizer llm.Invoker
}

// New creates an Engine. The gatekeeper invoker makes routing decisions
// and synthesizes final answers; the reference invoker evaluates chunk
// text. They may be the same Invoker.
func New(directory Directory, chunks ChunkResolver, gatekeeper, reference llm.Invoker) *Engine {
	return &Engine{
		directory:   directory,
		chunks:      chunks,
		gatekeeper:  gatekeeper,
		reference:   reference,
		synthesizer: gatekeeper,
	}
}

// Answer processes one query through the full pipeline and returns the
// final response. Errors are scoped to this request: the directory and
// chunk store are never mutated, and nothing is retained on failure.
func (e *Engine) Answer(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("engine: empty query")
	}

	summary, err := e.directory.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: directory summary: %w", err)
	}

	raw, err := e.gatekeeper.Invoke(ctx, gatekeeperPrompt(query, summary))
	if err != nil {
		return nil, &InvocationError{Stage: StageGatekeeper, Err: err}
	}

	dec, err := ParseDecision(raw, summary)
	if err != nil {
		return nil, err
	}

	if dec.Direct() {
		return &Response{Text: dec.Answer, Direct: true}, nil
	}

	result, err := e.dispatch(ctx, dec, summary)
	if err != nil {
		return nil, err
	}

	text, degraded, err := e.synthesize(ctx, query, result)
	if err != nil {
		return nil, err
	}
	return &Response{
		Text:     text,
		Sections: result.SectionIDs,
		Degraded: degraded,
	}, nil
}

// dispatch resolves every scoped chunk and runs one combined reference
// evaluation. All chunks must resolve before any model call is made: a
// missing section aborts the delegation outright, since answering from
// partial grounding would silently corrupt the isolation guarantee.
func (e *Engine) dispatch(ctx context.Context, dec *Decision, summary []knowledge.SectionInfo) (*ReferenceResult, error) {
	chunks, err := e.resolveScope(ctx, dec.Scope, summary)
	if err != nil {
		return nil, err
	}

	factual, err := e.reference.Invoke(ctx, referencePrompt(chunks, dec.SubQuery))
	if err != nil {
		return nil, &InvocationError{Stage: StageReference, Err: err}
	}

	return &ReferenceResult{
		SectionIDs:    dec.Scope,
		FactualAnswer: factual,
	}, nil
}

// resolveScope fetches the chunk text for every section in scope.
// Lookups run concurrently; results keep scope order so the evaluator
// prompt is reproducible regardless of completion order.
func (e *Engine) resolveScope(ctx context.Context, scope []string, summary []knowledge.SectionInfo) ([]scopedChunk, error) {
	descriptions := make(map[string]string, len(summary))
	for _, info := range summary {
		descriptions[info.ID] = info.Description
	}

	chunks := make([]scopedChunk, len(scope))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range scope {
		g.Go(func() error {
			text, err := e.chunks.Resolve(ctx, id)
			if err != nil {
				return &ChunkResolutionError{Section: id, Err: err}
			}
			chunks[i] = scopedChunk{ID: id, Description: descriptions[id], Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// synthesize rephrases the factual answer into a conversational reply.
// A failed or empty synthesis degrades to the raw factual answer — a
// cosmetic failure must never drop a valid result. Cancellation is the
// one exception: a cancelled request returns no result at all.
func (e *Engine) synthesize(ctx context.Context, query string, result *ReferenceResult) (text string, degraded bool, err error) {
	out, invokeErr := e.synthesizer.Invoke(ctx, synthesisPrompt(query, result.FactualAnswer))
	if invokeErr != nil {
		if ctx.Err() != nil {
			return "", false, &InvocationError{Stage: StageSynthesis, Err: ctx.Err()}
		}
		return result.FactualAnswer, true, nil
	}
	if strings.TrimSpace(out) == "" {
		return result.FactualAnswer, true, nil
	}
	return out, false, nil
}
