// Package providers drives every remote-model call: a shared rate limiter
// bounds concurrency, failed calls retry with class-dependent backoff, and
// callers get plain text back.
package providers

import "context"

// Chat finish reasons, mapped from the underlying completion's stop reason.
// "length" maps to ReasonMaxOutput; everything else maps to ReasonFinished.
const (
	ReasonFinished  = "finished"
	ReasonMaxOutput = "max_output_reached"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to the model. When History is supplied the new
// user turn is appended to a copy of it; the caller's slice is never mutated.
type ChatRequest struct {
	// Model selection (client default if empty)
	Model string

	// The new user turn.
	Prompt string

	// Prior turns, optional.
	History []Message

	// Request tracking. Generated if empty.
	RequestID string
}

// Client is the gateway interface for chat completions.
type Client interface {
	// Chat sends a request and returns the model's text content.
	Chat(ctx context.Context, req *ChatRequest) (string, error)

	// ChatWithReason additionally reports the terminal reason:
	// ReasonFinished or ReasonMaxOutput.
	ChatWithReason(ctx context.Context, req *ChatRequest) (string, string, error)

	// Name returns the client identifier (e.g. "openai").
	Name() string
}
