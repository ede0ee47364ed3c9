// Package policy evaluates reply-safety decisions with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine for the safety agent.
type Engine struct {
	query rego.PreparedEvalQuery
}

// Decision is the outcome of a safety evaluation. Flags lists the
// blocklist patterns that matched the reply.
type Decision struct {
	Decision string
	Flags    []string
}

// Block is the decision value that forces the refusal reply.
const Block = "block"

// NewEngine creates a policy engine from the given rego module.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.safety"),
		rego.Module("safety.rego", policyContent),
		rego.SetRegoVersion(ast.RegoV1),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks a draft reply against the safety policy.
func (e *Engine) Evaluate(ctx context.Context, reply string) (*Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{"reply": reply}))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return &Decision{Decision: "allow"}, nil
	}

	doc, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &Decision{Decision: "allow"}, nil
	}

	dec := &Decision{Decision: "allow"}
	if s, ok := doc["decision"].(string); ok {
		dec.Decision = s
	}
	if raw, ok := doc["flags"].([]any); ok {
		for _, f := range raw {
			if s, ok := f.(string); ok {
				dec.Flags = append(dec.Flags, s)
			}
		}
	}
	return dec, nil
}

// DefaultPolicy is the default safety policy. The blocklist entries are
// case-insensitive regular expressions matched against the draft reply.
const DefaultPolicy = `
package safety

blocklist := [
	"(?i)\\bhow to make a bomb\\b",
	"(?i)\\bmake an? explosive\\b",
	"(?i)\\bkill yourself\\b",
	"(?i)\\bsuicide\\b",
]

flags contains p if {
	some p in blocklist
	regex.match(p, input.reply)
}

default decision := "allow"

decision := "block" if count(flags) > 0
`
