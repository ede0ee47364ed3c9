// Package agent implements the orchestrated agents. Each agent reads
// and mutates the shared run state and proposes its successor agents.
package agent

import (
	"context"

	"github.com/tliang07/askflow/internal/domain"
)

// Agent is one unit of work in a run. Run must degrade to a documented
// default payload on unparsable model output and return a well-formed
// result; it returns an error only for infrastructure failures, which
// are fatal to the run.
type Agent interface {
	Name() domain.AgentName
	Run(ctx context.Context, state *domain.State) (*domain.AgentResult, error)
}

// Searcher is the retrieval backend contract.
type Searcher interface {
	Search(ctx context.Context, userID, query string, topK int) ([]domain.Evidence, error)
}

func defaultConfidence(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
