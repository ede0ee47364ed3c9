package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func TestEvaluateAllow(t *testing.T) {
	engine := newTestEngine(t)

	for _, reply := range []string{
		"The answer is 4.",
		"",
		"The bombardier beetle is a fascinating insect.",
	} {
		decision, err := engine.Evaluate(context.Background(), reply)
		require.NoError(t, err)
		assert.Equal(t, "allow", decision.Decision, "reply %q", reply)
		assert.Empty(t, decision.Flags)
	}
}

func TestEvaluateBlock(t *testing.T) {
	engine := newTestEngine(t)

	for _, reply := range []string{
		"Here is how to make a bomb.",
		"HOW TO MAKE A BOMB",
		"You could make an explosive from this.",
		"just kill yourself",
	} {
		decision, err := engine.Evaluate(context.Background(), reply)
		require.NoError(t, err)
		assert.Equal(t, Block, decision.Decision, "reply %q", reply)
		assert.NotEmpty(t, decision.Flags, "reply %q", reply)
	}
}

func TestEvaluateFlagsNamePatterns(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), "how to make a bomb")
	require.NoError(t, err)
	require.Len(t, decision.Flags, 1)
	assert.Contains(t, decision.Flags[0], "how to make a bomb")
}

func TestDefaultPolicyCompiles(t *testing.T) {
	// DefaultPolicy uses v1 syntax (`some ... in`, `contains`, `if`) and
	// must parse under the engine's default rego version.
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestNewEngineRejectsBadPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package safety\n\ndecision :=")
	assert.Error(t, err)
}
