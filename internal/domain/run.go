package domain

import (
	"encoding/json"
	"time"
)

// Run represents a single execution of the pipeline for one query.
type Run struct {
	RunID     string          `json:"run_id"`
	Query     string          `json:"query,omitempty"`
	Status    RunStatus       `json:"status"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// JournalEntry is an event recorded for replay.
type JournalEntry struct {
	RunID   string          `json:"run_id"`
	Seq     int64           `json:"seq"`
	Ts      int64           `json:"ts"` // Unix milliseconds
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Report is the structured output the report stage is asked to produce.
type Report struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	Limitations []string `json:"limitations"`
}

// RawOutput wraps report text that could not be parsed as JSON.
type RawOutput struct {
	RawOutput string `json:"raw_output"`
}
