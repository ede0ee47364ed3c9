package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tliang07/askflow/internal/adapter/llm"
	"github.com/tliang07/askflow/internal/domain"
	"github.com/tliang07/askflow/internal/tools"
)

const toolSystemPrompt = `You are a Tool Selection Agent. Return ONLY valid JSON.
Available tools: calculator, now.
Choose tool_name and tool_args.
Schema: {"tool_name":"calculator|now|none","tool_args":{...},"confidence":0.0-1.0}
Examples:
- For '25500 + 47500' => tool_name=calculator, tool_args={expression:'25500+47500'}
- For 'what time is it' => tool_name=now
`

// ToolAgent asks the model to pick a registered tool and invokes it.
type ToolAgent struct {
	llm      llm.Client
	registry *tools.Registry
}

// NewToolAgent creates the tool agent.
func NewToolAgent(client llm.Client, registry *tools.Registry) *ToolAgent {
	return &ToolAgent{llm: client, registry: registry}
}

func (a *ToolAgent) Name() domain.AgentName { return domain.AgentTool }

type toolPick struct {
	ToolName   string         `json:"tool_name"`
	ToolArgs   map[string]any `json:"tool_args"`
	Confidence float64        `json:"confidence"`
}

func (a *ToolAgent) Run(ctx context.Context, state *domain.State) (*domain.AgentResult, error) {
	raw, err := a.llm.Chat(ctx, []llm.Message{
		{Role: "system", Content: toolSystemPrompt},
		{Role: "user", Content: state.Input},
	}, llm.DefaultChatOptions())
	if err != nil {
		return nil, err
	}

	var pick toolPick
	if uerr := json.Unmarshal([]byte(raw), &pick); uerr != nil {
		pick = toolPick{ToolName: "none", Confidence: 0.3}
	}

	name := strings.TrimSpace(pick.ToolName)
	if name == "" {
		name = "none"
	}
	args := pick.ToolArgs
	if args == nil {
		args = map[string]any{}
	}

	if fn, ok := a.registry.Lookup(name); ok {
		result := fn(args)
		state.ToolResult = &domain.ToolResult{Tool: name, Args: args, Result: result}
		return &domain.AgentResult{
			Agent:      domain.AgentTool,
			Status:     domain.StatusOK,
			Data:       state.ToolResult,
			Confidence: defaultConfidence(pick.Confidence, 0.7),
			Next:       []domain.AgentName{domain.AgentFinal},
		}, nil
	}

	state.ToolResult = nil
	return &domain.AgentResult{
		Agent:      domain.AgentTool,
		Status:     domain.StatusOK,
		Data:       map[string]any{"tool": "none"},
		Confidence: defaultConfidence(pick.Confidence, 0.5),
		Next:       []domain.AgentName{domain.AgentFinal},
	}, nil
}
