// Package types defines core types and interfaces shared across llmbase.
package types

import "context"

// Message roles used in chat histories.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions configures a chat completion request.
type ChatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// StreamToken represents a single chunk of a streaming response.
type StreamToken struct {
	Text string
	Done bool
	Err  error
}

// ChatClient defines the interface for language model providers.
type ChatClient interface {
	// Chat produces a complete response for the given message history.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// ChatStream produces a streaming response for the given message history.
	ChatStream(ctx context.Context, messages []Message, opts ChatOptions) (<-chan StreamToken, error)

	// Close cleans up any resources used by the client.
	Close() error
}

// Profile is a named provider configuration record. Profiles are stored as
// plain JSON objects so they survive the scope merge without schema loss.
type Profile = map[string]any
