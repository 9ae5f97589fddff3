package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/agentflow/internal/domain"
	"github.com/xiaot623/agentflow/internal/pipeline"
)

// DefaultRunTimeout bounds a run when no timeout is configured.
const DefaultRunTimeout = 10 * time.Minute

// StartRun registers a new run and executes the pipeline in the background.
// It returns as soon as the run id is allocated.
func (s *Service) StartRun(ctx context.Context, req domain.StartRunRequest) (*domain.StartRunResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrQueryRequired
	}

	runID := uuid.New().String()
	run := &domain.Run{
		RunID:     runID,
		Query:     query,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	// The result and journal rows reference the run row, so a run that
	// cannot be recorded is not started.
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	if _, err := s.registry.Start(runID); err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	s.metrics.runStarted()
	s.workers.Add(1)
	go s.executeRun(context.WithoutCancel(ctx), runID, query)

	return &domain.StartRunResponse{RunID: runID}, nil
}

func (s *Service) executeRun(ctx context.Context, runID, query string) {
	defer s.workers.Done()

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout())
	defer cancel()

	var seq int64
	emit := func(ev domain.Event) {
		seq++
		s.publish(ctx, runID, seq, ev)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("run %s panicked: %v", runID, r)
			s.failRun(ctx, runID, fmt.Errorf("panic: %v", r), emit)
		}
	}()

	final, err := s.executor.Run(runCtx, domain.NewPipelineState(runID, query), emit)
	if err != nil {
		s.failRun(ctx, runID, err, emit)
		return
	}

	report := pipeline.ParseReport(final.FinalReportText())
	if err := s.store.PutResult(ctx, runID, report); err != nil {
		s.failRun(ctx, runID, fmt.Errorf("failed to store result: %w", err), emit)
		return
	}

	s.registry.MarkCompleted(runID)
	if err := s.store.UpdateRunCompleted(ctx, runID, domain.RunStatusCompleted, nil); err != nil {
		log.Errorf("failed to update run %s: %v", runID, err)
	}
	emit(domain.FinalReport{Data: report})
	s.registry.Close(runID)
	s.metrics.runFinished(domain.RunStatusCompleted)
	log.Infof("run %s completed", runID)
}

// runTimeout returns the configured run timeout, or DefaultRunTimeout when
// none is set.
func (s *Service) runTimeout() time.Duration {
	if s.config == nil || s.config.RunTimeout <= 0 {
		return DefaultRunTimeout
	}
	return s.config.RunTimeout
}

// failRun marks the run failed and closes its stream with an error event.
func (s *Service) failRun(ctx context.Context, runID string, cause error, emit func(domain.Event)) {
	log.Errorf("run %s failed: %v", runID, cause)

	ev := failureEvent(cause)
	s.registry.MarkFailed(runID)

	errData, _ := json.Marshal(ev)
	if err := s.store.UpdateRunCompleted(ctx, runID, domain.RunStatusFailed, errData); err != nil {
		log.Errorf("failed to update run %s: %v", runID, err)
	}

	emit(ev)
	s.registry.Close(runID)
	s.metrics.runFinished(domain.RunStatusFailed)
}

// failureEvent builds the client-facing error event. Internal error text is
// kept out of the message.
func failureEvent(cause error) domain.RunFailed {
	var stageErr *pipeline.StageError
	switch {
	case errors.As(cause, &stageErr):
		msg := fmt.Sprintf("%s failed to produce output", stageErr.Agent)
		if errors.Is(cause, context.DeadlineExceeded) {
			msg = fmt.Sprintf("%s timed out", stageErr.Agent)
		}
		return domain.RunFailed{Agent: stageErr.Agent, Code: domain.ErrorCodeGenerationFailed, Message: msg}
	case errors.Is(cause, pipeline.ErrStepLimit):
		return domain.RunFailed{Code: domain.ErrorCodeRunFailed, Message: "pipeline step limit reached"}
	default:
		return domain.RunFailed{Code: domain.ErrorCodeRunFailed, Message: "run failed"}
	}
}

// publish delivers ev to the run's stream and appends it to the journal.
func (s *Service) publish(ctx context.Context, runID string, seq int64, ev domain.Event) {
	if s.registry.Dispatch(runID, ev) {
		s.metrics.eventDispatched(ev.EventType())
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("failed to marshal %s event: %v", ev.EventType(), err)
		return
	}
	entry := &domain.JournalEntry{
		RunID:   runID,
		Seq:     seq,
		Ts:      time.Now().UnixMilli(),
		Type:    ev.EventType(),
		Payload: payload,
	}
	if err := s.store.CreateEvent(ctx, entry); err != nil {
		log.Errorf("failed to record event for run %s: %v", runID, err)
	}
}
