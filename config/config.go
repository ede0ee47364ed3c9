// Package config provides configuration for the askflow service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Ollama
	OllamaBaseURL string
	OllamaModel   string
	OllamaTimeout time.Duration

	// Embeddings
	EmbedModel       string
	EnableEmbeddings bool

	// Storage
	StorageDir     string
	MaxUploadBytes int64
	MongoURI       string
	MongoDB        string

	// Ingestion limits
	MaxPDFPages     int
	MaxPDFTextChars int
	MaxPDFChunks    int
	ChunkSize       int
	ChunkOverlap    int

	// Orchestration
	MaxHops int
	TopK    int
}

// Load loads configuration from a .env file (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "qwen2.5:7b"),
		OllamaTimeout:    time.Duration(getEnvInt("OLLAMA_TIMEOUT_SEC", 60)) * time.Second,
		EmbedModel:       getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		EnableEmbeddings: getEnvBool("ENABLE_EMBEDDINGS", true),
		StorageDir:       getEnv("STORAGE_DIR", "storage"),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", 25*1024*1024)),
		MongoURI:         getEnv("MONGO_URI", ""),
		MongoDB:          getEnv("MONGO_DB", "askflow"),
		MaxPDFPages:      getEnvInt("MAX_PDF_PAGES", 200),
		MaxPDFTextChars:  getEnvInt("MAX_PDF_TEXT_CHARS", 2_000_000),
		MaxPDFChunks:     getEnvInt("MAX_PDF_CHUNKS", 800),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 1200),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		MaxHops:          getEnvInt("MAX_AGENT_HOPS", 6),
		TopK:             getEnvInt("RETRIEVAL_TOP_K", 5),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
