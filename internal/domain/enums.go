package domain

// AgentName identifies a node in the agent graph. The set is closed:
// successor proposals outside it are ignored by the scheduler.
type AgentName string

const (
	AgentIntent    AgentName = "intent"
	AgentRetrieval AgentName = "retrieval"
	AgentTool      AgentName = "tool"
	AgentFinal     AgentName = "final"
	AgentSafety    AgentName = "safety"

	// AgentStop is a routing sentinel, never a registered agent.
	AgentStop AgentName = "stop"
)

// RunStatus represents the lifecycle state of a workflow run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Agent result statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
