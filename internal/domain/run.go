package domain

import (
	"encoding/json"
	"time"
)

// Run is the persisted record of one orchestration run. It is created
// with status "running" before the first hop, appended to after every
// agent step, and finalized exactly once.
type Run struct {
	RunID       string     `json:"run_id"`
	UserID      string     `json:"user_id"`
	Input       string     `json:"input"`
	Steps       []RunStep  `json:"steps"`
	FinalReply  string     `json:"final_reply,omitempty"`
	AgentPath   []string   `json:"agent_path,omitempty"`
	Confidence  float64    `json:"confidence"`
	Status      RunStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunStep is one logged agent invocation within a run.
type RunStep struct {
	Agent  string          `json:"agent"`
	Output json.RawMessage `json:"output"`
}

// ChatMessage is one entry of a user's chat history.
type ChatMessage struct {
	UserID    string         `json:"user_id"`
	Role      string         `json:"role"`
	Text      string         `json:"text"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// FileRecord describes one ingested file.
type FileRecord struct {
	FileID      string    `json:"file_id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chunk is one slice of extracted file text, optionally embedded.
type Chunk struct {
	UserID     string    `json:"user_id"`
	FileID     string    `json:"file_id"`
	Filename   string    `json:"filename"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float64 `json:"embedding,omitempty"`
}

// IngestResult summarizes one file ingestion.
type IngestResult struct {
	OK       bool   `json:"ok"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Warning  string `json:"warning,omitempty"`
}
