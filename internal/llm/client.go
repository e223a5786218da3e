// Package llm abstracts over LLM backends behind a single blocking
// Generate call, hiding provider-specific streaming and retry mechanics
// from the Agent Loop.
package llm

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors distinguishable via errors.Is, matched by RetryingClient
// to decide whether a call is worth retrying and by the Agent Loop to
// describe a failure.
var (
	// ErrTimeout means the call did not complete before its deadline.
	ErrTimeout = errors.New("llm: call timed out")
	// ErrTransport means the backend or network failed independent of
	// content (connection refused, 5xx, malformed response envelope).
	ErrTransport = errors.New("llm: transport error")
	// ErrEmptyResponse means the backend returned a null or
	// whitespace-only completion.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Role mirrors the small set of chat roles the agent protocol needs.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the conversation sent to the backend.
type Message struct {
	Role    Role
	Content string
}

// TokenStats accumulates usage across calls made by a single Client.
type TokenStats struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Calls            int
}

// Client is the contract every LLM backend satisfies. A single call,
// Generate, covers chat-style completion; backends that stream internally
// accumulate deltas before returning.
type Client interface {
	// Generate produces one completion for messages. timeout bounds one
	// backend call; elapsing it surfaces ErrTimeout. RetryingClient applies
	// timeout to each attempt separately, so a retried call can take longer.
	Generate(ctx context.Context, messages []Message, temperature float64, maxTokens int, timeout time.Duration) (string, error)

	// ModelName identifies the backend's configured model, for logging
	// and the session banner.
	ModelName() string

	// TokenStats reports cumulative usage for this Client instance.
	TokenStats() TokenStats

	// ResetTokenStats zeroes the usage counters.
	ResetTokenStats()
}
