package tools

import "github.com/xiaot623/agentflow/internal/domain"

// RegisterBuiltins registers the tools the pipeline stages use.
func RegisterBuiltins(r *Registry, search *WebSearch) {
	r.MustRegister(domain.ToolWebSearch, search.Search)
}
