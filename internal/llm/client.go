// Package llm wraps language-model invocation behind a minimal contract:
// one prompt in, raw text out.
//
// The production client talks to any OpenAI-compatible endpoint
// (OpenRouter by default) through langchaingo. Docent runs two clients
// with different models: a cheap one for gatekeeper decisions and
// synthesis, a more capable one for reference evaluation.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// temperature is kept low for all roles: the gatekeeper must emit strict
// JSON and the reference evaluator must stay grounded in the chunk text.
const temperature = 0.1

// Invoker sends a prompt to a language model and returns its raw text
// response. Implementations must honor context cancellation.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Client is an Invoker backed by an OpenAI-compatible chat endpoint.
type Client struct {
	model llms.Model
	name  string
}

// NewClient creates a Client for the given model name against an
// OpenAI-compatible endpoint. baseURL and apiKey come from config;
// an empty baseURL uses the provider's default.
func NewClient(modelName, baseURL, apiKey string) (*Client, error) {
	opts := []openai.Option{
		openai.WithModel(modelName),
	}
	if apiKey != "" {
		opts = append(opts, openai.WithToken(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: create client for %q: %w", modelName, err)
	}
	return &Client{model: model, name: modelName}, nil
}

// Model returns the model name this client invokes.
func (c *Client) Model() string {
	return c.name
}

// Invoke sends the prompt as a single system message and returns the
// model's text response, trimmed. Transport and API failures are
// returned wrapped; the caller decides how they map onto its own
// error taxonomy.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt),
	}

	resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("llm: invoke %q: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: invoke %q: empty response", c.name)
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
