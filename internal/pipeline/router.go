// Package pipeline runs the research → analysis → report stages of a run
// against the shared pipeline state.
package pipeline

import "github.com/xiaot623/agentflow/internal/domain"

// End is the step returned by Route once every output is present.
const End = "__end__"

// Route picks the next stage from the state alone.
func Route(state domain.PipelineState) string {
	switch {
	case state.ResearchNotes == nil:
		return domain.StageResearch
	case state.AnalysisResults == nil:
		return domain.StageAnalysis
	case state.FinalReport == nil:
		return domain.StageReport
	default:
		return End
	}
}
