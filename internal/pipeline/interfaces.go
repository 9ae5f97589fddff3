package pipeline

import (
	"context"

	"github.com/xiaot623/agentflow/internal/domain"
)

// Generator is the text-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Tool is an external lookup a stage may call.
type Tool interface {
	Invoke(ctx context.Context, input string) (string, error)
}

// Emitter receives a run's events. Implementations must not block.
type Emitter func(ev domain.Event)

// Stage is one named unit of pipeline work.
type Stage interface {
	// Name is the router's name for the stage.
	Name() string
	// Agent is the display name carried on events.
	Agent() string
	// Run returns state with the stage's output field set.
	Run(ctx context.Context, state domain.PipelineState, emit Emitter) (domain.PipelineState, error)
}

// Observer is notified after each stage attempt.
type Observer interface {
	StageFinished(stage string, err error, seconds float64)
}
