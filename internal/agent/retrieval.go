package agent

import (
	"context"

	"github.com/tliang07/askflow/internal/domain"
)

// RetrievalAgent searches the user's file and chat corpus and hands the
// hits to the final builder.
type RetrievalAgent struct {
	searcher Searcher
	topK     int

	// Fixed confidence heuristics, tunable per instance.
	HitConfidence  float64
	MissConfidence float64
}

// NewRetrievalAgent creates the retrieval agent.
func NewRetrievalAgent(searcher Searcher, topK int) *RetrievalAgent {
	return &RetrievalAgent{
		searcher:       searcher,
		topK:           topK,
		HitConfidence:  0.85,
		MissConfidence: 0.45,
	}
}

func (a *RetrievalAgent) Name() domain.AgentName { return domain.AgentRetrieval }

func (a *RetrievalAgent) Run(ctx context.Context, state *domain.State) (*domain.AgentResult, error) {
	hits, err := a.searcher.Search(ctx, state.UserID, state.Input, a.topK)
	if err != nil {
		return nil, err
	}

	state.RetrievalHits = hits

	confidence := a.MissConfidence
	if len(hits) > 0 {
		confidence = a.HitConfidence
	}

	return &domain.AgentResult{
		Agent:      domain.AgentRetrieval,
		Status:     domain.StatusOK,
		Data:       map[string]any{"hits": hits},
		Confidence: confidence,
		Next:       []domain.AgentName{domain.AgentFinal},
	}, nil
}
