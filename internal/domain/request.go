package domain

// StartRunRequest is the body of a start-run request.
type StartRunRequest struct {
	Query string `json:"query"`
}

// StartRunResponse is returned once a run has been accepted.
type StartRunResponse struct {
	RunID string `json:"run_id"`
}

// RunEventsResponse is the journal replay for a run.
type RunEventsResponse struct {
	RunID   string         `json:"run_id"`
	Events  []JournalEntry `json:"events"`
	HasMore bool           `json:"has_more"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
