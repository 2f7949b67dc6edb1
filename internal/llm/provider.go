package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for chat-completion calls.
// A provider instance is bound to exactly one model id; generating with a
// different model means constructing a new provider (see Factory).
type Provider interface {
	// Generate sends the request to the LLM and returns its output.
	// When the request carries a Schema, the provider asks for structured
	// output and the response Content is the validated JSON. When Schema is
	// nil, Content is the raw assistant text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Most pipeline nodes put their whole
	// rendered template here; roleplay additionally threads conversation
	// history through Messages.
	System string

	// Messages is the conversation history in order. System turns inside
	// the history are folded into the provider's system slot.
	Messages []Message

	// Schema, when set, requests JSON conforming to this schema via the
	// provider's native structured-output mechanism. Nil means free text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero value means
	// deterministic.
	Temperature float64
}

// Message is a single role-tagged turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is the message sender role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema, kebab-case (e.g. "lesson-article").
	Name string

	// Description tells the LLM what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// requested, raw assistant text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to: "end", "max_tokens", "error".
	StopReason string
}

// Text returns the response content as plain text with surrounding
// whitespace trimmed. Free-text completions arrive here.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Content))
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// splitSystem separates system turns from the rest of a message list.
// All current providers take the system prompt out-of-band, so system turns
// carried in the history are folded into the system slot in order.
func splitSystem(req Request) (system string, rest []Message) {
	system = req.System
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if system == "" {
				system = m.Content
			} else {
				system += "\n\n" + m.Content
			}
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// resolveModel maps a friendly model name to a provider model ID.
// Unknown names pass through unchanged so callers can use raw provider IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
