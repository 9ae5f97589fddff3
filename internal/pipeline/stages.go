package pipeline

import (
	"context"
	"fmt"

	"github.com/xiaot623/agentflow/internal/domain"
)

// ResearchStage searches the web for the query and summarizes the results.
type ResearchStage struct {
	gen  Generator
	tool Tool
}

// NewResearchStage creates the research stage.
func NewResearchStage(gen Generator, search Tool) *ResearchStage {
	return &ResearchStage{gen: gen, tool: search}
}

func (s *ResearchStage) Name() string  { return domain.StageResearch }
func (s *ResearchStage) Agent() string { return domain.AgentResearch }

// Run never fails on the search itself: a search error is folded into the
// prompt as a placeholder so the pipeline continues.
func (s *ResearchStage) Run(ctx context.Context, state domain.PipelineState, emit Emitter) (domain.PipelineState, error) {
	emit(domain.ToolCalled{Agent: s.Agent(), Tool: domain.ToolWebSearch})

	results, err := s.search(ctx, state.UserQuery)
	if err != nil {
		results = fmt.Sprintf("Error performing search: %v", err)
	}

	notes, err := s.gen.Generate(ctx, researchPrompt(state.UserQuery, results))
	if err != nil {
		return state, err
	}
	return domain.WithResearchNotes(state, notes), nil
}

func (s *ResearchStage) search(ctx context.Context, query string) (results string, err error) {
	if s.tool == nil {
		return "", fmt.Errorf("search tool unavailable")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search tool panicked: %v", r)
		}
	}()
	return s.tool.Invoke(ctx, query)
}

// AnalysisStage extracts insights from the research notes.
type AnalysisStage struct {
	gen Generator
}

// NewAnalysisStage creates the analysis stage.
func NewAnalysisStage(gen Generator) *AnalysisStage {
	return &AnalysisStage{gen: gen}
}

func (s *AnalysisStage) Name() string  { return domain.StageAnalysis }
func (s *AnalysisStage) Agent() string { return domain.AgentAnalysis }

func (s *AnalysisStage) Run(ctx context.Context, state domain.PipelineState, _ Emitter) (domain.PipelineState, error) {
	analysis, err := s.gen.Generate(ctx, analysisPrompt(state.UserQuery, state.ResearchNotesText()))
	if err != nil {
		return state, err
	}
	return domain.WithAnalysisResults(state, analysis), nil
}

// ReportStage turns the analysis into a JSON report.
type ReportStage struct {
	gen Generator
}

// NewReportStage creates the report stage.
func NewReportStage(gen Generator) *ReportStage {
	return &ReportStage{gen: gen}
}

func (s *ReportStage) Name() string  { return domain.StageReport }
func (s *ReportStage) Agent() string { return domain.AgentReport }

func (s *ReportStage) Run(ctx context.Context, state domain.PipelineState, _ Emitter) (domain.PipelineState, error) {
	report, err := s.gen.Generate(ctx, reportPrompt(state.AnalysisResultsText()))
	if err != nil {
		return state, err
	}
	return domain.WithFinalReport(state, report), nil
}

// DefaultStages returns the research, analysis and report stages.
func DefaultStages(gen Generator, search Tool) []Stage {
	return []Stage{
		NewResearchStage(gen, search),
		NewAnalysisStage(gen),
		NewReportStage(gen),
	}
}
