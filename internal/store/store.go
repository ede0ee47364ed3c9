// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/tliang07/askflow/internal/domain"
)

// Store defines the interface for data persistence. Implementations are
// interchangeable and selected once at process start.
type Store interface {
	// Chat history
	AppendChat(ctx context.Context, msg *domain.ChatMessage) error
	RecentChats(ctx context.Context, userID string, limit int) ([]domain.ChatMessage, error)

	// Files and chunks
	CreateFile(ctx context.Context, file *domain.FileRecord) error
	AddChunk(ctx context.Context, chunk *domain.Chunk) error

	// Search ranks file chunks and chat history for a user, file hits
	// first, chat hits filling remaining slots up to topK.
	Search(ctx context.Context, userID, query string, topK int) ([]domain.Evidence, error)

	// Workflow runs
	CreateRun(ctx context.Context, run *domain.Run) error
	AppendRunStep(ctx context.Context, runID string, result *domain.AgentResult) error
	FinalizeRun(ctx context.Context, runID string, status domain.RunStatus, reply string, path []string, confidence float64) error
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	ListRuns(ctx context.Context, userID string, limit int) ([]domain.Run, error)

	// Lifecycle
	Close() error
}
