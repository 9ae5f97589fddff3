package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xiaot623/agentflow/internal/domain"
)

// DefaultMaxSteps bounds the number of stage invocations per run.
const DefaultMaxSteps = 25

// ErrStepLimit is returned when the router does not reach End within MaxSteps.
var ErrStepLimit = errors.New("pipeline step limit reached")

// StageError wraps a fatal stage failure.
type StageError struct {
	Stage string
	Agent string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Executor drives stages in the order chosen by Route.
type Executor struct {
	stages   map[string]Stage
	maxSteps int
	observer Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithObserver registers a stage observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// NewExecutor creates an executor over the given stages.
func NewExecutor(stages []Stage, opts ...Option) *Executor {
	e := &Executor{
		stages:   make(map[string]Stage, len(stages)),
		maxSteps: DefaultMaxSteps,
	}
	for _, s := range stages {
		e.stages[s.Name()] = s
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes stages until the router signals End and returns the final
// state. A stage error aborts the run and is returned as a *StageError.
func (e *Executor) Run(ctx context.Context, state domain.PipelineState, emit Emitter) (domain.PipelineState, error) {
	if emit == nil {
		emit = func(domain.Event) {}
	}

	for step := 0; ; step++ {
		next := Route(state)
		if next == End {
			return state, nil
		}
		if step >= e.maxSteps {
			return state, ErrStepLimit
		}

		stage, ok := e.stages[next]
		if !ok {
			return state, fmt.Errorf("no stage registered for %q", next)
		}

		emit(domain.AgentStarted{Agent: stage.Agent()})

		start := time.Now()
		updated, err := stage.Run(ctx, state, emit)
		if e.observer != nil {
			e.observer.StageFinished(stage.Name(), err, time.Since(start).Seconds())
		}
		if err != nil {
			return state, &StageError{Stage: stage.Name(), Agent: stage.Agent(), Err: err}
		}

		emit(domain.AgentCompleted{Agent: stage.Agent()})
		state = updated
	}
}
