// Package orchestrator implements the hop-limited workflow scheduler.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tliang07/askflow/internal/agent"
	"github.com/tliang07/askflow/internal/domain"
	"github.com/tliang07/askflow/internal/store"
)

// DefaultMaxHops is the default hop budget per run.
const DefaultMaxHops = 6

// Orchestrator routes a run through the agent graph: a FIFO frontier of
// agent names, deduplicated by name, bounded by a hop budget. The hop
// budget is a cooperative circuit breaker, not a failure signal: a run
// that exhausts it completes with whatever state it reached.
type Orchestrator struct {
	agents  map[domain.AgentName]agent.Agent
	store   store.Store
	maxHops int
}

// New creates an orchestrator over the given agents.
func New(st store.Store, agents []agent.Agent, maxHops int) *Orchestrator {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	registry := make(map[domain.AgentName]agent.Agent, len(agents))
	for _, a := range agents {
		registry[a.Name()] = a
	}
	return &Orchestrator{agents: registry, store: st, maxHops: maxHops}
}

// Run executes one end-to-end orchestration for a user message.
func (o *Orchestrator) Run(ctx context.Context, userID, message string) (*domain.AskResult, error) {
	runID := uuid.New().String()
	state := domain.NewState(runID, userID, message)

	record := &domain.Run{
		RunID:     runID,
		UserID:    userID,
		Input:     message,
		Status:    domain.RunStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.store.CreateRun(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	queue := []domain.AgentName{domain.AgentIntent}
	hops := 0

	for len(queue) > 0 && hops < o.maxHops {
		current := queue[0]
		queue = queue[1:]

		ag, ok := o.agents[current]
		if !ok {
			// Malformed routing ends the run, it is not an error.
			break
		}

		result, err := ag.Run(ctx, state)
		if err != nil {
			o.failRun(ctx, runID, current, state, err)
			return nil, fmt.Errorf("agent %s failed: %w", current, err)
		}

		state.AgentPath = append(state.AgentPath, string(current))

		// Step persistence is best-effort and never aborts the run.
		if perr := o.store.AppendRunStep(ctx, runID, result); perr != nil {
			log.Printf("ERROR: failed to append step for run %s: %v", runID, perr)
		}

		// Safety is an unconditional terminal regardless of its proposal.
		if current == domain.AgentSafety {
			break
		}

		for _, next := range result.Next {
			if next == domain.AgentStop {
				continue
			}
			if _, registered := o.agents[next]; !registered {
				continue
			}
			if queued(queue, next) {
				continue
			}
			queue = append(queue, next)
		}

		hops++
	}

	confidence := clamp(state.Confidence)
	if err := o.store.FinalizeRun(ctx, runID, domain.RunStatusCompleted, state.DraftReply, state.AgentPath, confidence); err != nil {
		log.Printf("ERROR: failed to finalize run %s: %v", runID, err)
	}

	return &domain.AskResult{
		Reply:      state.DraftReply,
		AgentPath:  state.AgentPath,
		Confidence: confidence,
		RunID:      runID,
	}, nil
}

// failRun is a best-effort safety net: it records the failure step and
// finalizes the run, swallowing secondary persistence errors.
func (o *Orchestrator) failRun(ctx context.Context, runID string, current domain.AgentName, state *domain.State, cause error) {
	step := &domain.AgentResult{
		Agent:  current,
		Status: domain.StatusError,
		Error:  cause.Error(),
	}
	if err := o.store.AppendRunStep(ctx, runID, step); err != nil {
		log.Printf("ERROR: failed to record failure step for run %s: %v", runID, err)
	}
	if err := o.store.FinalizeRun(ctx, runID, domain.RunStatusFailed, "", state.AgentPath, 0.0); err != nil {
		log.Printf("ERROR: failed to finalize failed run %s: %v", runID, err)
	}
}

func queued(queue []domain.AgentName, name domain.AgentName) bool {
	for _, n := range queue {
		if n == name {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
