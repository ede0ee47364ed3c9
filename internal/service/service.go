// Package service wires the orchestrator, stores and ingestion behind
// one application service used by the HTTP layer.
package service

import (
	"context"
	"log"

	"github.com/tliang07/askflow/config"
	"github.com/tliang07/askflow/internal/domain"
	"github.com/tliang07/askflow/internal/orchestrator"
	"github.com/tliang07/askflow/internal/store"
)

// Ingestor runs the PDF ingestion pipeline.
type Ingestor interface {
	IngestPDF(ctx context.Context, userID, filePath, filename string) (*domain.IngestResult, error)
}

// Service is the application service.
type Service struct {
	store       store.Store
	orch        *orchestrator.Orchestrator
	ingestor    Ingestor
	cfg         *config.Config
	storageKind string
}

// New creates a Service. storageKind names the active store backend
// for the health snapshot ("sqlite" or "mongo").
func New(st store.Store, orch *orchestrator.Orchestrator, ingestor Ingestor, cfg *config.Config, storageKind string) *Service {
	return &Service{
		store:       st,
		orch:        orch,
		ingestor:    ingestor,
		cfg:         cfg,
		storageKind: storageKind,
	}
}

// Ask routes one user message through the agent chain and records both
// sides of the exchange in chat history. Chat history writes are
// best-effort and never block the run.
func (s *Service) Ask(ctx context.Context, userID, message string) (*domain.AskResult, error) {
	if err := s.store.AppendChat(ctx, &domain.ChatMessage{UserID: userID, Role: "user", Text: message}); err != nil {
		log.Printf("ERROR: failed to save user message: %v", err)
	}

	result, err := s.orch.Run(ctx, userID, message)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendChat(ctx, &domain.ChatMessage{
		UserID: userID,
		Role:   "assistant",
		Text:   result.Reply,
		Meta:   map[string]any{"agent_path": result.AgentPath, "confidence": result.Confidence},
	}); err != nil {
		log.Printf("ERROR: failed to save assistant message: %v", err)
	}

	return result, nil
}

// IngestPDF ingests one saved PDF for a user.
func (s *Service) IngestPDF(ctx context.Context, userID, filePath, filename string) (*domain.IngestResult, error) {
	return s.ingestor.IngestPDF(ctx, userID, filePath, filename)
}

// GetRun fetches a run record; returns nil when not found.
func (s *Service) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	return s.store.GetRun(ctx, runID)
}

// ListRuns returns a user's runs, most recent first.
func (s *Service) ListRuns(ctx context.Context, userID string, limit int) ([]domain.Run, error) {
	return s.store.ListRuns(ctx, userID, limit)
}

// Health returns a static capability/config snapshot.
func (s *Service) Health() map[string]any {
	return map[string]any{
		"status":       "ok",
		"ollama_model": s.cfg.OllamaModel,
		"storage":      s.storageKind,
		"max_hops":     s.cfg.MaxHops,
	}
}
