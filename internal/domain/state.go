package domain

// PipelineState is the shared state threaded through the stages of a run.
// A nil output field means the owning stage has not produced it yet.
// State values are replaced, never mutated in place: each stage owns one
// output field and sets it through its With* function.
type PipelineState struct {
	RunID           string
	UserQuery       string
	ResearchNotes   *string
	AnalysisResults *string
	FinalReport     *string
}

// NewPipelineState returns the initial state for a run.
func NewPipelineState(runID, query string) PipelineState {
	return PipelineState{RunID: runID, UserQuery: query}
}

// WithResearchNotes returns a copy of s with the research stage's output set.
func WithResearchNotes(s PipelineState, notes string) PipelineState {
	s.ResearchNotes = &notes
	return s
}

// WithAnalysisResults returns a copy of s with the analysis stage's output set.
func WithAnalysisResults(s PipelineState, analysis string) PipelineState {
	s.AnalysisResults = &analysis
	return s
}

// WithFinalReport returns a copy of s with the report stage's output set.
func WithFinalReport(s PipelineState, report string) PipelineState {
	s.FinalReport = &report
	return s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ResearchNotesText returns the research notes or "" if absent.
func (s PipelineState) ResearchNotesText() string { return deref(s.ResearchNotes) }

// AnalysisResultsText returns the analysis or "" if absent.
func (s PipelineState) AnalysisResultsText() string { return deref(s.AnalysisResults) }

// FinalReportText returns the raw final report or "" if absent.
func (s PipelineState) FinalReportText() string { return deref(s.FinalReport) }
