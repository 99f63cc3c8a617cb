// Package llm talks to hosted language models for question drafting. Every
// backend returns JSON that has already been checked against the caller's
// schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured completion.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the output has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the backend for structured JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Ask builds a single-turn request.
func Ask(system, user string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: user}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
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

// Schema is a named JSON Schema. Name is kebab-case, e.g. "quiz-question".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is JSON. Without a schema it is whatever text the model sent.
	Content json.RawMessage
	Usage   Usage
	Model   string
	// StopReason is one of StopEnd or StopMaxTokens.
	StopReason string
}

const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func usage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// finish validates content against the request schema and assembles the
// response every backend returns.
func finish(req Request, content json.RawMessage, u Usage, model, stop string) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: u, Model: model, StopReason: stop}, nil
}
