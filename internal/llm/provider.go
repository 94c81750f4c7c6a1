package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one structured-output request to a text-generation service.
// When req.Schema is set the provider asks for JSON conforming to it using
// whatever native mechanism the service offers; the caller still validates.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Pinger is implemented by providers that support a cheap health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Request is a system prompt plus the conversation so far. Grading sends a
// single user message holding the wrapped student answer.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	MaxTokens   int
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

// StopReason says why the service stopped generating.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is the raw reply. Content is unvalidated.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is the sum of input and output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }

// resolveModel maps a short alias such as "claude-haiku" to a model ID.
// Unknown names pass through unchanged.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
