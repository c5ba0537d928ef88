package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docent-ai/docent/internal/knowledge"
)

// scopedChunk is one resolved knowledge chunk, carried with its directory
// metadata so multi-chunk prompts can label each reference section.
type scopedChunk struct {
	ID          string
	Description string
	Text        string
}

// marshalSummary renders the directory summary as the lean JSON object
// the gatekeeper prompt embeds: section ID mapped to description, nothing
// else. Built by hand so key order follows the summary order — map
// marshaling would sort keys and break prompt reproducibility.
func marshalSummary(summary []knowledge.SectionInfo) string {
	var b strings.Builder
	b.WriteString("{")
	for i, info := range summary {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(info.ID)
		desc, _ := json.Marshal(info.Description)
		fmt.Fprintf(&b, `%s: {"description": %s}`, key, desc)
	}
	b.WriteString("}")
	return b.String()
}

// gatekeeperPrompt builds the routing prompt. It embeds only section IDs
// and descriptions — never chunk text or file paths — so the gatekeeper
// cannot leak knowledge it was not granted.
func gatekeeperPrompt(query string, summary []knowledge.SectionInfo) string {
	return fmt.Sprintf(`You are a helpful but concise assistant with limited knowledge. Your available reference material is summarized in this directory: %s

For the user's query: %q

First, determine if you can answer confidently on your own. Rate your confidence from 1 to 10.
If your confidence is %d or higher, answer directly.
If your confidence is below %d, you must consult reference material. Identify the most relevant section(s) from the directory to answer the query. Queries that compare or combine topics usually need information from multiple sections — when in doubt, select several relevant sections rather than just one.

Respond ONLY in JSON format, always including your confidence score.
- If answering directly, use: {"needs_reference": false, "answer": "Your direct answer here.", "confidence": 9}
- If delegating, use: {"needs_reference": true, "scope": ["section_id_1", "section_id_2"], "sub_query": "A precise question for the reference evaluator.", "reason": "Why you need the reference material.", "confidence": 4}`,
		marshalSummary(summary), query, DirectThreshold, DirectThreshold)
}

// referencePrompt builds the grounded evaluation prompt. Chunks appear
// verbatim, in scope order, and the evaluator is told to use nothing
// else — this is the isolation property that replaces semantic retrieval
// with explicit grounding.
func referencePrompt(chunks []scopedChunk, subQuery string) string {
	if len(chunks) == 1 {
		return fmt.Sprintf(`You are a meticulous expert tasked with answering a question based ONLY on the following text. Do not use any outside knowledge.

Text:
%s

Question: %s

Provide a detailed, accurate answer based solely on the information in the text above.`,
			chunks[0].Text, subQuery)
	}

	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "--- REFERENCE SECTION %d: %s ---\n%s\n\n", i+1, chunk.Description, chunk.Text)
	}

	return fmt.Sprintf(`You are a meticulous expert tasked with answering a question based ONLY on the following reference materials. Do not use any outside knowledge.

Reference Materials:
%s
Question: %s

Provide a comprehensive answer by analyzing all the provided reference materials. Combine information across sections when relevant, but base your answer strictly on the text provided above.`,
		b.String(), subQuery)
}

// synthesisPrompt asks for the factual answer to be rephrased into a
// conversational reply to the original query. The factual content is
// ground truth and must not be contradicted.
func synthesisPrompt(query, factualAnswer string) string {
	return fmt.Sprintf(`You delegated a user's question to a reference evaluator and received a factual response. Synthesize this information into a natural, conversational answer that directly addresses the user's original query.

Original user query: %q

Reference evaluator's response: %q

Rephrase this information into a natural answer addressed to the user. Do not contradict the factual content, do not mention the delegation, and do not prefix your reply with labels.`,
		query, factualAnswer)
}
