package domain

// AgentResult is the value returned by one agent invocation. It is
// produced once and never mutated after return; the scheduler reads
// Next to extend the frontier and persists the whole record as a step.
type AgentResult struct {
	Agent      AgentName   `json:"agent"`
	Status     string      `json:"status"` // ok | error
	Data       any         `json:"data,omitempty"`
	Confidence float64     `json:"confidence"`
	Next       []AgentName `json:"next,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// AskResult is the reply contract returned to the caller of a run.
type AskResult struct {
	Reply      string   `json:"reply"`
	AgentPath  []string `json:"agent_path"`
	Confidence float64  `json:"confidence"`
	RunID      string   `json:"run_id"`
}
