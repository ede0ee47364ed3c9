// Package tools provides the fixed tool registry used by the tool agent.
package tools

import (
	"fmt"
	"sync"
)

// Func is a pure tool function. It reports business failures inside the
// returned payload ({"ok": false, "error": ...}) rather than panicking.
type Func func(args map[string]any) map[string]any

// Registry stores tool functions keyed by tool name.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// DefaultRegistry is the shared registry used by the orchestrator.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Func),
	}
}

// Register adds a new function for a tool name.
func (r *Registry) Register(toolName string, fn Func) error {
	if toolName == "" {
		return fmt.Errorf("tool name is required")
	}
	if fn == nil {
		return fmt.Errorf("tool function is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[toolName]; exists {
		return fmt.Errorf("tool already registered for %s", toolName)
	}
	r.funcs[toolName] = fn
	return nil
}

// Lookup returns the function registered for the tool name.
func (r *Registry) Lookup(toolName string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[toolName]
	return fn, ok
}

// MustRegister adds a function to the registry or panics.
func (r *Registry) MustRegister(toolName string, fn Func) {
	if err := r.Register(toolName, fn); err != nil {
		panic(err)
	}
}
