package engine

import (
	"strings"
	"testing"

	"github.com/docent-ai/docent/internal/knowledge"
)

func TestMarshalSummary_PreservesOrder(t *testing.T) {
	summary := []knowledge.SectionInfo{
		{ID: "zeta_chapter_1", Description: "Z first"},
		{ID: "alpha_chapter_1", Description: "A second"},
	}

	got := marshalSummary(summary)
	want := `{"zeta_chapter_1": {"description": "Z first"}, "alpha_chapter_1": {"description": "A second"}}`
	if got != want {
		t.Errorf("marshalSummary = %s\nwant %s", got, want)
	}
}

func TestMarshalSummary_Empty(t *testing.T) {
	if got := marshalSummary(nil); got != "{}" {
		t.Errorf("marshalSummary(nil) = %q, want {}", got)
	}
}

func TestMarshalSummary_EscapesDescriptions(t *testing.T) {
	summary := []knowledge.SectionInfo{
		{ID: "doc_chapter_1", Description: `He said "hello"` + "\nand left"},
	}
	got := marshalSummary(summary)
	if !strings.Contains(got, `\"hello\"`) || !strings.Contains(got, `\n`) {
		t.Errorf("marshalSummary = %s, quotes or newlines not escaped", got)
	}
}

func TestGatekeeperPrompt_ContainsOnlyDirectoryView(t *testing.T) {
	summary := []knowledge.SectionInfo{
		{ID: "manual_chapter_1", Description: "Setup"},
	}
	prompt := gatekeeperPrompt("how do I set it up?", summary)

	for _, want := range []string{"manual_chapter_1", "Setup", "how do I set it up?", "needs_reference", "confidence"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestReferencePrompt_SingleChunk(t *testing.T) {
	chunks := []scopedChunk{
		{ID: "m_chapter_1", Description: "Setup", Text: "Plug it in."},
	}
	prompt := referencePrompt(chunks, "how do I start?")

	if !strings.Contains(prompt, "Plug it in.") {
		t.Error("chunk text missing")
	}
	if strings.Contains(prompt, "REFERENCE SECTION") {
		t.Error("single-chunk prompt should not use multi-section labels")
	}
}

func TestReferencePrompt_MultiChunkLabels(t *testing.T) {
	chunks := []scopedChunk{
		{ID: "m_chapter_1", Description: "Setup", Text: "Plug it in."},
		{ID: "m_chapter_2", Description: "Care", Text: "Wipe gently."},
	}
	prompt := referencePrompt(chunks, "setup and care?")

	if !strings.Contains(prompt, "--- REFERENCE SECTION 1: Setup ---") {
		t.Error("first section label missing")
	}
	if !strings.Contains(prompt, "--- REFERENCE SECTION 2: Care ---") {
		t.Error("second section label missing")
	}
	if strings.Index(prompt, "Plug it in.") > strings.Index(prompt, "Wipe gently.") {
		t.Error("chunks out of order")
	}
}

func TestSynthesisPrompt(t *testing.T) {
	prompt := synthesisPrompt("how heavy?", "240 grams.")
	if !strings.Contains(prompt, "how heavy?") || !strings.Contains(prompt, "240 grams.") {
		t.Errorf("prompt = %q", prompt)
	}
}
