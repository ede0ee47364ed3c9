// Package llm provides an abstraction for the Ollama chat API.
package llm

import "context"

// Message is one chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions configures one chat call.
type ChatOptions struct {
	// Format requests a constrained output format ("json" or empty).
	Format      string
	Temperature float64
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
}

// DefaultChatOptions returns the options used by most agents.
func DefaultChatOptions() ChatOptions {
	return ChatOptions{Format: "json", Temperature: 0.2, MaxRetries: 2}
}

// Client defines the interface for LLM operations.
type Client interface {
	// Chat sends a synchronous chat completion request and returns the
	// raw model text. Failures are retried per ChatOptions.MaxRetries
	// with a short linearly increasing backoff.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// Embeddings computes an embedding vector (single attempt).
	Embeddings(ctx context.Context, text, model string) ([]float64, error)
}

// Ensure OllamaClient implements Client.
var _ Client = (*OllamaClient)(nil)
