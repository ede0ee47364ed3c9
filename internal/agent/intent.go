package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tliang07/askflow/internal/adapter/llm"
	"github.com/tliang07/askflow/internal/domain"
)

const intentSystemPrompt = `You are an Intent Classification Agent. Return ONLY valid JSON.
Your job: decide whether to call retrieval, tool, or go straight to final.

Rules:
- needs_tools=true for calculations, arithmetic, unit conversions, or getting current time.
- needs_retrieval=true when the question likely needs information from uploaded files or past chat history.
- If the user asks about an uploaded document, set needs_retrieval=true.

Schema (strict):
{
  "intent": "question|action|lookup|chat",
  "needs_retrieval": true|false,
  "needs_tools": true|false,
  "notes": "short reason",
  "confidence": 0.0-1.0
}
`

// IntentAgent classifies the raw input and routes to tool, retrieval
// or final.
type IntentAgent struct {
	llm llm.Client
}

// NewIntentAgent creates the intent agent.
func NewIntentAgent(client llm.Client) *IntentAgent {
	return &IntentAgent{llm: client}
}

func (a *IntentAgent) Name() domain.AgentName { return domain.AgentIntent }

func (a *IntentAgent) Run(ctx context.Context, state *domain.State) (*domain.AgentResult, error) {
	raw, err := a.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: intentSystemPrompt},
		{Role: "user", Content: strings.TrimSpace(state.Input)},
	}, llm.DefaultChatOptions())
	if err != nil {
		return nil, err
	}

	var data domain.Intent
	if uerr := json.Unmarshal([]byte(raw), &data); uerr != nil {
		// Unparsable model output routes straight to final.
		data = domain.Intent{Intent: "question", Notes: "parse_failed", Confidence: 0.4}
	} else {
		data.Confidence = defaultConfidence(data.Confidence, 0.7)
	}

	state.Intent = data

	var next []domain.AgentName
	if data.NeedsTools {
		next = append(next, domain.AgentTool)
	}
	if data.NeedsRetrieval {
		next = append(next, domain.AgentRetrieval)
	}
	if len(next) == 0 {
		next = []domain.AgentName{domain.AgentFinal}
	}

	return &domain.AgentResult{
		Agent:      domain.AgentIntent,
		Status:     domain.StatusOK,
		Data:       data,
		Confidence: data.Confidence,
		Next:       next,
	}, nil
}
