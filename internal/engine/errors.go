package engine

import "fmt"

// Stage identifies which pipeline step an invocation failure came from.
type Stage string

const (
	StageGatekeeper Stage = "gatekeeper"
	StageReference  Stage = "reference"
	StageSynthesis  Stage = "synthesis"
)

// DecisionParseError means the gatekeeper model's raw output could not be
// turned into a valid decision: malformed JSON, schema violation, unknown
// scope, or an incoherent confidence score. It is never retried
// automatically — the ambiguity is in the model's own response, so the
// caller should ask the user to rephrase.
type DecisionParseError struct {
	Reason string
	Raw    string
}

func (e *DecisionParseError) Error() string {
	return fmt.Sprintf("engine: gatekeeper decision rejected: %s", e.Reason)
}

// ChunkResolutionError means a section ID in a delegation's scope could
// not be resolved to chunk text. The delegation is aborted rather than
// evaluated with partial grounding.
type ChunkResolutionError struct {
	Section string
	Err     error
}

func (e *ChunkResolutionError) Error() string {
	return fmt.Sprintf("engine: resolving section %q: %v", e.Section, e.Err)
}

func (e *ChunkResolutionError) Unwrap() error {
	return e.Err
}

// InvocationError wraps a transport or API failure from a model call,
// tagged with the pipeline stage it occurred in.
type InvocationError struct {
	Stage Stage
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("engine: %s invocation: %v", e.Stage, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
