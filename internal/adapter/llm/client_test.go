package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendsRequestAndParsesReply(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": `{"reply":"hi"}`},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5:7b", 5*time.Second)
	out, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hello"},
	}, DefaultChatOptions())
	require.NoError(t, err)

	assert.Equal(t, `{"reply":"hi"}`, out)
	assert.Equal(t, "qwen2.5:7b", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 0.2, got.Options["temperature"])
	require.Len(t, got.Messages, 2)
}

func TestChatRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "ok"},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "m", 5*time.Second)
	out, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatOptions{MaxRetries: 2})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestChatExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "m", 5*time.Second)
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, ChatOptions{MaxRetries: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama /api/chat failed: 500")
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatContextCancelStopsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewOllamaClient(srv.URL, "m", 5*time.Second)
	_, err := c.Chat(ctx, []Message{{Role: "user", Content: "hi"}}, ChatOptions{MaxRetries: 5})
	require.Error(t, err)
}

func TestEmbeddings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2}})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "m", 5*time.Second)
	vec, err := c.Embeddings(context.Background(), "some text", "nomic-embed-text")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, vec)
}

func TestEmbeddingsMissingVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"other": true})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "m", 5*time.Second)
	_, err := c.Embeddings(context.Background(), "text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'embedding'")
}
