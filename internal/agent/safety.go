package agent

import (
	"context"
	"strings"

	"github.com/tliang07/askflow/internal/domain"
	"github.com/tliang07/askflow/policy"
)

// RefusalMessage replaces a blocked draft reply.
const RefusalMessage = "I can't help with that request. If you tell me the safe goal, I'll help."

// SafetyAgent screens the draft reply against the safety policy. The
// scheduler treats it as an unconditional terminal node.
type SafetyAgent struct {
	engine *policy.Engine
}

// NewSafetyAgent creates the safety agent.
func NewSafetyAgent(engine *policy.Engine) *SafetyAgent {
	return &SafetyAgent{engine: engine}
}

func (a *SafetyAgent) Name() domain.AgentName { return domain.AgentSafety }

func (a *SafetyAgent) Run(ctx context.Context, state *domain.State) (*domain.AgentResult, error) {
	draft := strings.TrimSpace(state.DraftReply)

	decision, err := a.engine.Evaluate(ctx, draft)
	if err != nil {
		return nil, err
	}

	if decision.Decision == policy.Block {
		state.DraftReply = RefusalMessage
		state.Confidence = 1.0
		return &domain.AgentResult{
			Agent:      domain.AgentSafety,
			Status:     domain.StatusOK,
			Data:       map[string]any{"blocked": true, "flags": decision.Flags},
			Confidence: 1.0,
			Next:       []domain.AgentName{domain.AgentStop},
		}, nil
	}

	return &domain.AgentResult{
		Agent:      domain.AgentSafety,
		Status:     domain.StatusOK,
		Data:       map[string]any{"blocked": false},
		Confidence: 1.0,
		Next:       []domain.AgentName{domain.AgentStop},
	}, nil
}
