// Package llm abstracts the generative model behind the matcher so the rest
// of the codebase never touches an SDK directly. The concrete provider is
// Gemini; tests use the mock.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured JSON from a prompt.
type Provider interface {
	// Generate sends the request and returns the model output. When the
	// request carries a Schema the content is validated JSON conforming to
	// it; otherwise it is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the model serving the requests.
	ModelID() string
}

type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Matching is single turn, so this is
	// normally one user message.
	Messages []Message

	// Schema, when set, switches the provider to structured JSON output and
	// validates the response against it.
	Schema *Schema

	MaxTokens int

	// Temperature in 0.0 to 1.0, zero means deterministic.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema definition.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is validated JSON when the request had a Schema, raw text
	// otherwise.
	Content json.RawMessage

	Usage Usage
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
