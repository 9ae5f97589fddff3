package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/agentflow/internal/domain"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	failOn  string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.failOn != "" && strings.Contains(prompt, g.failOn) {
		return "", errors.New("backend unavailable")
	}
	switch {
	case strings.Contains(prompt, "research agent"):
		return "research notes", nil
	case strings.Contains(prompt, "data analysis agent"):
		return "analysis", nil
	default:
		return `{"title":"T","summary":"S","key_points":[],"limitations":[]}`, nil
	}
}

type fakeTool struct {
	result string
	err    error
	calls  int
}

func (f *fakeTool) Invoke(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.result, f.err
}

type recorder struct {
	events []domain.Event
}

func (r *recorder) emit(ev domain.Event) { r.events = append(r.events, ev) }

type stageStat struct {
	stage string
	err   error
}

type fakeObserver struct {
	stats []stageStat
}

func (o *fakeObserver) StageFinished(stage string, err error, _ float64) {
	o.stats = append(o.stats, stageStat{stage: stage, err: err})
}

func TestExecutorRunsStagesInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	tool := &fakeTool{result: "- A: B"}
	obs := &fakeObserver{}
	exec := NewExecutor(DefaultStages(gen, tool), WithObserver(obs))
	rec := &recorder{}

	final, err := exec.Run(context.Background(), domain.NewPipelineState("r1", "X"), rec.emit)
	require.NoError(t, err)

	assert.Equal(t, []domain.Event{
		domain.AgentStarted{Agent: domain.AgentResearch},
		domain.ToolCalled{Agent: domain.AgentResearch, Tool: domain.ToolWebSearch},
		domain.AgentCompleted{Agent: domain.AgentResearch},
		domain.AgentStarted{Agent: domain.AgentAnalysis},
		domain.AgentCompleted{Agent: domain.AgentAnalysis},
		domain.AgentStarted{Agent: domain.AgentReport},
		domain.AgentCompleted{Agent: domain.AgentReport},
	}, rec.events)

	assert.Equal(t, "research notes", final.ResearchNotesText())
	assert.Equal(t, "analysis", final.AnalysisResultsText())
	assert.NotNil(t, final.FinalReport)
	assert.Equal(t, 1, tool.calls)
	require.Len(t, gen.prompts, 3)
	assert.Contains(t, gen.prompts[0], "- A: B")
	assert.Contains(t, gen.prompts[1], "research notes")
	assert.Contains(t, gen.prompts[2], "analysis")

	require.Len(t, obs.stats, 3)
	assert.Equal(t, domain.StageReport, obs.stats[2].stage)
}

func TestExecutorToolFailureUsesPlaceholder(t *testing.T) {
	gen := &fakeGenerator{}
	tool := &fakeTool{err: errors.New("rate limited")}
	exec := NewExecutor(DefaultStages(gen, tool))

	final, err := exec.Run(context.Background(), domain.NewPipelineState("r1", "X"), nil)
	require.NoError(t, err)
	require.NotNil(t, final.ResearchNotes)
	assert.Contains(t, gen.prompts[0], "Error performing search: rate limited")
	assert.NotNil(t, final.FinalReport)
}

func TestExecutorMissingToolUsesPlaceholder(t *testing.T) {
	gen := &fakeGenerator{}
	exec := NewExecutor(DefaultStages(gen, nil))

	final, err := exec.Run(context.Background(), domain.NewPipelineState("r1", "X"), nil)
	require.NoError(t, err)
	assert.NotNil(t, final.ResearchNotes)
	assert.Contains(t, gen.prompts[0], "Error performing search")
}

func TestExecutorGenerationFailureIsFatal(t *testing.T) {
	gen := &fakeGenerator{failOn: "data analysis agent"}
	exec := NewExecutor(DefaultStages(gen, &fakeTool{result: "r"}))
	rec := &recorder{}

	state, err := exec.Run(context.Background(), domain.NewPipelineState("r1", "X"), rec.emit)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageAnalysis, stageErr.Stage)
	assert.Equal(t, domain.AgentAnalysis, stageErr.Agent)

	assert.Equal(t, "research notes", state.ResearchNotesText())
	assert.Nil(t, state.AnalysisResults)
	assert.Equal(t, domain.AgentStarted{Agent: domain.AgentAnalysis}, rec.events[len(rec.events)-1])
}

type stuckStage struct{}

func (stuckStage) Name() string  { return domain.StageResearch }
func (stuckStage) Agent() string { return "Stuck" }
func (stuckStage) Run(_ context.Context, s domain.PipelineState, _ Emitter) (domain.PipelineState, error) {
	return s, nil
}

func TestExecutorStepLimit(t *testing.T) {
	exec := NewExecutor([]Stage{stuckStage{}}, WithMaxSteps(3))
	_, err := exec.Run(context.Background(), domain.NewPipelineState("r1", "X"), nil)
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestExecutorMissingStage(t *testing.T) {
	exec := NewExecutor(nil)
	_, err := exec.Run(context.Background(), domain.NewPipelineState("r1", "X"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "research")
}

func TestExecutorSkipsCompletedStages(t *testing.T) {
	gen := &fakeGenerator{}
	tool := &fakeTool{}
	exec := NewExecutor(DefaultStages(gen, tool))
	rec := &recorder{}

	state := domain.WithAnalysisResults(domain.WithResearchNotes(domain.NewPipelineState("r1", "X"), "n"), "a")
	final, err := exec.Run(context.Background(), state, rec.emit)
	require.NoError(t, err)
	assert.Equal(t, 0, tool.calls)
	assert.Len(t, rec.events, 2)
	assert.Equal(t, "n", final.ResearchNotesText())
}
