package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tliang07/askflow/internal/adapter/llm"
	"github.com/tliang07/askflow/internal/domain"
)

// At most this many evidence snippets are handed to the model.
const maxEvidenceSnippets = 8

const finalSystemPrompt = `You are the Final Response Builder. Return ONLY valid JSON.
Use the provided evidence ONLY when it exists. If evidence is empty, answer normally from general reasoning.
If you used evidence snippets, mention that you used them (no fake citations).

Output schema (strict):
{
  "reply": "string",
  "confidence": 0.0-1.0
}
`

// FinalBuilderAgent composes the draft reply from input, intent, tool
// result and evidence snippets.
type FinalBuilderAgent struct {
	llm llm.Client
}

// NewFinalBuilderAgent creates the final builder agent.
func NewFinalBuilderAgent(client llm.Client) *FinalBuilderAgent {
	return &FinalBuilderAgent{llm: client}
}

func (a *FinalBuilderAgent) Name() domain.AgentName { return domain.AgentFinal }

type finalOutput struct {
	Reply      string  `json:"reply"`
	Confidence float64 `json:"confidence"`
}

func (a *FinalBuilderAgent) Run(ctx context.Context, state *domain.State) (*domain.AgentResult, error) {
	toolContext := "NONE"
	if state.ToolResult != nil {
		if b, err := json.Marshal(state.ToolResult); err == nil {
			toolContext = string(b)
		}
	}

	var evidence []string
	for i, h := range state.RetrievalHits {
		if i >= maxEvidenceSnippets {
			break
		}
		evidence = append(evidence, fmt.Sprintf("- (%s) %s: %s", h.SourceType, h.Source, h.Snippet))
	}
	evidenceBlock := strings.Join(evidence, "\n")
	if evidenceBlock == "" {
		evidenceBlock = "NONE"
	}

	intentJSON, _ := json.Marshal(state.Intent)

	userPrompt := fmt.Sprintf(
		"User request: %s\n\nIntent: %s\n\nTool result (if any): %s\n\nEvidence snippets (if any):\n%s\n",
		state.Input, intentJSON, toolContext, evidenceBlock)

	opts := llm.DefaultChatOptions()
	opts.Temperature = 0.3
	raw, err := a.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: finalSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, opts)
	if err != nil {
		return nil, err
	}

	var out finalOutput
	if uerr := json.Unmarshal([]byte(raw), &out); uerr != nil {
		// Treat unparsable model output as the reply itself.
		out = finalOutput{Reply: strings.TrimSpace(raw), Confidence: 0.55}
	} else {
		out.Confidence = defaultConfidence(out.Confidence, 0.7)
	}

	state.DraftReply = strings.TrimSpace(out.Reply)
	state.Confidence = out.Confidence

	return &domain.AgentResult{
		Agent:      domain.AgentFinal,
		Status:     domain.StatusOK,
		Data:       out,
		Confidence: out.Confidence,
		Next:       []domain.AgentName{domain.AgentSafety},
	}, nil
}
