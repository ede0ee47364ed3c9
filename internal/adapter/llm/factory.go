package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvAskflowMode is the environment variable name for mode selection.
	EnvAskflowMode = "ASKFLOW_MODE"
	// ModeMock indicates the mock client should be used.
	ModeMock = "MOCK"
)

// NewClient creates an LLM client based on the ASKFLOW_MODE environment
// variable. If ASKFLOW_MODE=MOCK, returns a MockClient; otherwise
// returns a real Ollama client.
func NewClient(baseURL, model string, timeout time.Duration) Client {
	if os.Getenv(EnvAskflowMode) == ModeMock {
		log.Println("ASKFLOW_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}
	return NewOllamaClient(baseURL, model, timeout)
}
