package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a deterministic offline implementation of Client. It
// inspects the system prompt to decide which agent is calling and
// returns a canned response in that agent's output schema.
type MockClient struct{}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements Client.
var _ Client = (*MockClient)(nil)

// Chat returns a canned JSON response matching the calling agent's schema.
func (m *MockClient) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	var system, user string
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = msg.Content
		case "user":
			user = msg.Content
		}
	}

	switch {
	case strings.Contains(system, "Intent Classification"):
		return `{"intent":"chat","needs_retrieval":false,"needs_tools":false,"notes":"mock","confidence":0.9}`, nil
	case strings.Contains(system, "Tool Selection"):
		return `{"tool_name":"none","tool_args":{},"confidence":0.9}`, nil
	default:
		reply := fmt.Sprintf("(mock) You said: %s", strings.TrimSpace(user))
		return fmt.Sprintf(`{"reply":%q,"confidence":0.9}`, reply), nil
	}
}

// Embeddings returns a fixed-size deterministic vector.
func (m *MockClient) Embeddings(ctx context.Context, text, model string) ([]float64, error) {
	vec := make([]float64, 8)
	for i, r := range text {
		vec[i%8] += float64(r%17) / 100
	}
	return vec, nil
}
