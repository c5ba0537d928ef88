package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/docent-ai/docent/internal/knowledge"
)

// DirectThreshold is the self-reported confidence (1..10) at or above
// which the gatekeeper answers directly. The comparison lives here, not
// in the prompt: a decision whose variant contradicts its confidence is
// rejected as malformed rather than trusted.
const DirectThreshold = 8

// decisionSchemaJSON is the wire contract for the gatekeeper's output.
// needs_reference tags the variant; the delegate variant must carry a
// non-empty scope, a sub-query, and a confidence score.
const decisionSchemaJSON = `{
	"type": "object",
	"oneOf": [
		{
			"properties": {
				"needs_reference": {"const": false},
				"answer": {"type": "string", "minLength": 1},
				"confidence": {"type": "integer", "minimum": 1, "maximum": 10}
			},
			"required": ["needs_reference", "answer"]
		},
		{
			"properties": {
				"needs_reference": {"const": true},
				"scope": {
					"type": "array",
					"items": {"type": "string", "minLength": 1},
					"minItems": 1
				},
				"sub_query": {"type": "string", "minLength": 1},
				"reason": {"type": "string"},
				"confidence": {"type": "integer", "minimum": 1, "maximum": 10}
			},
			"required": ["needs_reference", "scope", "sub_query", "confidence"]
		}
	]
}`

var decisionSchema = mustCompileSchema(decisionSchemaJSON)

func mustCompileSchema(src string) *jsonschema.Schema {
	schema, err := jsonschema.NewCompiler().Compile([]byte(src))
	if err != nil {
		panic(fmt.Sprintf("engine: compile decision schema: %v", err))
	}
	return schema
}

// Decision is the gatekeeper's routing decision — a tagged union with
// NeedsReference as the tag. Direct decisions carry Answer; delegate
// decisions carry Scope, SubQuery, Reason, and Confidence.
type Decision struct {
	NeedsReference bool     `json:"needs_reference"`
	Answer         string   `json:"answer,omitempty"`
	Scope          []string `json:"scope,omitempty"`
	SubQuery       string   `json:"sub_query,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	Confidence     int      `json:"confidence,omitempty"`
}

// Direct reports whether the decision answers without delegation.
func (d *Decision) Direct() bool {
	return !d.NeedsReference
}

// ParseDecision parses and validates the gatekeeper's raw output against
// the directory summary in force at decision time. Any failure — no JSON
// object, schema violation, unknown or duplicate scope ID, incoherent
// confidence, delegation against an empty directory — yields a
// *DecisionParseError. No partial decision is ever synthesized.
func ParseDecision(raw string, summary []knowledge.SectionInfo) (*Decision, error) {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return nil, &DecisionParseError{Reason: "no JSON object in model output", Raw: raw}
	}
	if !json.Valid([]byte(payload)) {
		return nil, &DecisionParseError{Reason: "malformed JSON in model output", Raw: raw}
	}

	if result := decisionSchema.ValidateJSON([]byte(payload)); !result.IsValid() {
		return nil, &DecisionParseError{
			Reason: fmt.Sprintf("schema validation failed: %v", result.Errors),
			Raw:    raw,
		}
	}

	var dec Decision
	if err := json.Unmarshal([]byte(payload), &dec); err != nil {
		return nil, &DecisionParseError{Reason: fmt.Sprintf("decode: %v", err), Raw: raw}
	}

	if err := validateDecision(&dec, summary); err != nil {
		return nil, err
	}
	return &dec, nil
}

// validateDecision enforces the semantic invariants the schema alone
// cannot express.
func validateDecision(dec *Decision, summary []knowledge.SectionInfo) error {
	if dec.Direct() {
		// A direct answer with a low self-reported confidence contradicts
		// the routing rule — the model should have delegated.
		if dec.Confidence != 0 && dec.Confidence < DirectThreshold {
			return &DecisionParseError{
				Reason: fmt.Sprintf("direct answer with confidence %d (< %d)", dec.Confidence, DirectThreshold),
			}
		}
		return nil
	}

	if dec.Confidence >= DirectThreshold {
		return &DecisionParseError{
			Reason: fmt.Sprintf("delegation with confidence %d (>= %d)", dec.Confidence, DirectThreshold),
		}
	}
	if len(summary) == 0 {
		return &DecisionParseError{Reason: "delegation requested but no knowledge sections are loaded"}
	}

	known := make(map[string]bool, len(summary))
	for _, info := range summary {
		known[info.ID] = true
	}

	seen := make(map[string]bool, len(dec.Scope))
	for _, id := range dec.Scope {
		if !known[id] {
			return &DecisionParseError{Reason: fmt.Sprintf("scope references unknown section %q", id)}
		}
		if seen[id] {
			return &DecisionParseError{Reason: fmt.Sprintf("scope lists section %q twice", id)}
		}
		seen[id] = true
	}
	return nil
}

// extractJSONObject returns the outermost {...} span in raw model text.
// Models often wrap JSON in prose or markdown fences; everything outside
// the braces is discarded.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}
