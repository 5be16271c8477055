package llm

import (
	"context"
)

// Request is a single completion call: the system prompt carries the
// grounding instructions and context, Prompt carries the user question.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Response struct {
	Content    string
	StopReason string
}

// Client is an interface for invoking LLM models.
// This allows mocking in tests without making real API calls.
type Client interface {
	Complete(ctx context.Context, request Request) (*Response, error)
	CompleteWithRetry(ctx context.Context, request Request) (*Response, error)
}
