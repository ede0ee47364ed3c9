package agent

import (
	"context"
	"errors"

	"github.com/tliang07/askflow/internal/adapter/llm"
	"github.com/tliang07/askflow/internal/domain"
)

// fakeLLM returns a canned reply for every chat call.
type fakeLLM struct {
	reply string
	err   error

	calls    int
	lastMsgs []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	f.calls++
	f.lastMsgs = messages
	return f.reply, f.err
}

func (f *fakeLLM) Embeddings(ctx context.Context, text, model string) ([]float64, error) {
	return nil, errors.New("embeddings not supported in tests")
}

type fakeSearcher struct {
	hits []domain.Evidence
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, userID, query string, topK int) ([]domain.Evidence, error) {
	return f.hits, f.err
}
