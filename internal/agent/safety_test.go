package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tliang07/askflow/internal/domain"
	"github.com/tliang07/askflow/policy"
)

func newSafetyAgent(t *testing.T) *SafetyAgent {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to build policy engine: %v", err)
	}
	return NewSafetyAgent(engine)
}

func TestSafetyAllowsCleanReply(t *testing.T) {
	a := newSafetyAgent(t)
	state := domain.NewState("r1", "u1", "what is 2+2?")
	state.DraftReply = "The answer is 4."
	state.Confidence = 0.9

	result, err := a.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, "The answer is 4.", state.DraftReply)
	assert.InDelta(t, 0.9, state.Confidence, 1e-9)
	assert.Equal(t, []domain.AgentName{domain.AgentStop}, result.Next)
}

func TestSafetyBlocksAndReplacesReply(t *testing.T) {
	a := newSafetyAgent(t)
	state := domain.NewState("r1", "u1", "bad request")
	state.DraftReply = "Sure, here is HOW TO MAKE A BOMB with household items."
	state.Confidence = 0.9

	result, err := a.Run(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, RefusalMessage, state.DraftReply)
	assert.InDelta(t, 1.0, state.Confidence, 1e-9)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.Equal(t, []domain.AgentName{domain.AgentStop}, result.Next)

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["blocked"])
	assert.NotEmpty(t, data["flags"])
}

func TestSafetyBlocklistIsWordBounded(t *testing.T) {
	a := newSafetyAgent(t)

	// Substrings of blocked phrases inside longer words must not match.
	state := domain.NewState("r1", "u1", "history question")
	state.DraftReply = "The bombardier beetle sprays a hot chemical mix."

	_, err := a.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "The bombardier beetle sprays a hot chemical mix.", state.DraftReply)
}
