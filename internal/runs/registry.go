// Package runs tracks in-flight runs: each run's event channel and
// lifecycle status. A Registry is created once per process and shared by the
// HTTP handlers and the run workers.
package runs

import (
	"sync"
	"time"

	"github.com/xiaot623/agentflow/internal/domain"
	"github.com/xiaot623/agentflow/internal/stream"
)

type entry struct {
	channel   *stream.Channel
	status    domain.RunStatus
	startedAt time.Time
}

// Snapshot is a point-in-time copy of a run's registry entry.
type Snapshot struct {
	RunID     string
	Status    domain.RunStatus
	StartedAt time.Time
}

// Registry maps run ids to their channel and status.
//
// Entries live for the life of the process.
// TODO: evict terminal runs once their channel is drained and a retention
// window has passed; today memory grows with the number of runs started.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*entry
	now  func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		runs: make(map[string]*entry),
		now:  time.Now,
	}
}

// Start allocates a channel and a running status for runID.
// Reusing an id is an error; the existing entry is left untouched.
func (r *Registry) Start(runID string) (*stream.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[runID]; exists {
		return nil, domain.ErrRunExists
	}
	ch := stream.NewChannel()
	r.runs[runID] = &entry{
		channel:   ch,
		status:    domain.RunStatusRunning,
		startedAt: r.now(),
	}
	return ch, nil
}

// LookupChannel returns the channel for runID.
func (r *Registry) LookupChannel(runID string) (*stream.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.runs[runID]
	if !ok {
		return nil, false
	}
	return e.channel, true
}

// Status returns the lifecycle status of runID.
func (r *Registry) Status(runID string) (domain.RunStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.runs[runID]
	if !ok {
		return "", false
	}
	return e.status, true
}

// Get returns a snapshot of runID's entry.
func (r *Registry) Get(runID string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.runs[runID]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{RunID: runID, Status: e.status, StartedAt: e.startedAt}, true
}

// MarkCompleted moves a running run to completed. It is a no-op for unknown
// or already terminal runs.
func (r *Registry) MarkCompleted(runID string) {
	r.transition(runID, domain.RunStatusCompleted)
}

// MarkFailed moves a running run to failed. It is a no-op for unknown or
// already terminal runs.
func (r *Registry) MarkFailed(runID string) {
	r.transition(runID, domain.RunStatusFailed)
}

func (r *Registry) transition(runID string, status domain.RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.runs[runID]
	if !ok || e.status.IsTerminal() {
		return
	}
	e.status = status
}

// Active returns the number of runs still running.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.runs {
		if e.status == domain.RunStatusRunning {
			n++
		}
	}
	return n
}
