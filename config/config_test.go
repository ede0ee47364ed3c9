package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, 60*time.Second, cfg.OllamaTimeout)
	assert.True(t, cfg.EnableEmbeddings)
	assert.Equal(t, int64(25*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "", cfg.MongoURI)
	assert.Equal(t, 6, cfg.MaxHops)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 1200, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAX_AGENT_HOPS", "3")
	t.Setenv("ENABLE_EMBEDDINGS", "false")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg := Load()
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 3, cfg.MaxHops)
	assert.False(t, cfg.EnableEmbeddings)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
}
