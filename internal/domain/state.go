package domain

// State is the shared mutable state for one run. Exactly one instance
// exists per run; agents receive it by reference and mutate it in place.
// Execution within a run is strictly sequential, so no locking is needed.
type State struct {
	RunID         string
	UserID        string
	Input         string
	AgentPath     []string
	Intent        Intent
	RetrievalHits []Evidence
	ToolResult    *ToolResult
	DraftReply    string
	Confidence    float64
}

// NewState initializes run state for a single invocation.
func NewState(runID, userID, input string) *State {
	return &State{
		RunID:      runID,
		UserID:     userID,
		Input:      input,
		AgentPath:  []string{},
		Confidence: 0.5,
	}
}

// Intent is the classification produced by the intent agent.
type Intent struct {
	Intent         string  `json:"intent"`
	NeedsRetrieval bool    `json:"needs_retrieval"`
	NeedsTools     bool    `json:"needs_tools"`
	Notes          string  `json:"notes,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// ToolResult describes one tool invocation and its outcome.
type ToolResult struct {
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
	Result map[string]any `json:"result"`
}

// Evidence is a scored retrieval hit surfaced to the final builder.
// Snippets are bounded to 800 characters with newlines collapsed.
type Evidence struct {
	SourceType string  `json:"source_type"` // "file" or "chat"
	Source     string  `json:"source"`
	FileID     string  `json:"file_id,omitempty"`
	ChunkIndex int     `json:"chunk_index,omitempty"`
	Score      float64 `json:"score"`
	Snippet    string  `json:"snippet"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// Evidence source kinds.
const (
	SourceFile = "file"
	SourceChat = "chat"
)
