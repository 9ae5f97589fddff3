package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/agentflow/internal/domain"
	"github.com/xiaot623/agentflow/internal/stream"
)

// GetResult returns the stored result for runID. Without a result it reports
// ErrRunNotFound, ErrRunInProgress or ErrRunFailed.
func (s *Service) GetResult(ctx context.Context, runID string) (json.RawMessage, error) {
	value, ok, err := s.store.GetResult(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if ok {
		return value, nil
	}

	status, known := s.registry.Status(runID)
	if !known {
		run, err := s.store.GetRun(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run: %w", err)
		}
		if run == nil {
			return nil, domain.ErrRunNotFound
		}
		status = run.Status
	}

	if status == domain.RunStatusFailed {
		return nil, domain.ErrRunFailed
	}
	return nil, domain.ErrRunInProgress
}

// Subscribe attaches the single consumer to runID's event stream.
func (s *Service) Subscribe(runID string) (*stream.Subscription, error) {
	ch, ok := s.registry.LookupChannel(runID)
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return ch.Subscribe()
}

// GetRun returns the run record, preferring live registry status.
func (s *Service) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	snap, live := s.registry.Get(runID)
	if run == nil {
		if !live {
			return nil, domain.ErrRunNotFound
		}
		return &domain.Run{RunID: runID, Status: snap.Status, StartedAt: snap.StartedAt}, nil
	}
	if live {
		run.Status = snap.Status
	}
	return run, nil
}

// Journal page sizes.
const (
	DefaultEventsLimit = 100
	MaxEventsLimit     = 1000
)

// GetRunEvents replays the run's journal after afterSeq.
func (s *Service) GetRunEvents(ctx context.Context, runID string, afterSeq int64, limit int) (*domain.RunEventsResponse, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultEventsLimit
	}
	if limit > MaxEventsLimit {
		limit = MaxEventsLimit
	}

	// Fetch one extra row to learn whether more remain.
	events, err := s.store.GetEvents(ctx, runID, afterSeq, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to get run events: %w", err)
	}

	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}
	if events == nil {
		events = []domain.JournalEntry{}
	}
	return &domain.RunEventsResponse{RunID: runID, Events: events, HasMore: hasMore}, nil
}
