// Package domain defines the core domain models for agentflow.
package domain

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// EventType represents the type tag of an event.
type EventType string

const (
	EventTypeAgentStarted   EventType = "agent_started"
	EventTypeToolCalled     EventType = "tool_called"
	EventTypeAgentCompleted EventType = "agent_completed"
	EventTypeFinalReport    EventType = "final_report"
	EventTypeError          EventType = "error"
)

// Stage names used by the router.
const (
	StageResearch = "research"
	StageAnalysis = "analysis"
	StageReport   = "report"
)

// Agent display names carried on events.
const (
	AgentResearch = "Research Agent"
	AgentAnalysis = "Analysis Agent"
	AgentReport   = "Report Agent"
)

// ToolWebSearch is the name of the web search tool.
const ToolWebSearch = "web_search"

// Error codes carried on error events.
const (
	ErrorCodeGenerationFailed = "generation_failed"
	ErrorCodeRunFailed        = "run_failed"
)
