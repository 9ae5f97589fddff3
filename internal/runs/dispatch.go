package runs

import "github.com/xiaot623/agentflow/internal/domain"

// Dispatch delivers ev to runID's channel from any goroutine without
// blocking. Delivery is best effort: unknown runs are ignored.
// It reports whether the event was enqueued.
func (r *Registry) Dispatch(runID string, ev domain.Event) bool {
	ch, ok := r.LookupChannel(runID)
	if !ok {
		return false
	}
	return ch.Push(ev)
}

// Close enqueues the terminal sentinel on runID's channel. Unknown runs are
// ignored.
func (r *Registry) Close(runID string) {
	if ch, ok := r.LookupChannel(runID); ok {
		ch.End()
	}
}
