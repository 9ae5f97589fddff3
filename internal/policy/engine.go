// Package policy gates tool calls with an OPA rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the tool policy for input {tool_name, input}.
// The rule may yield a bare decision string or an object
// {"decision": ..., "reason": ...}. No result means allow.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", "default", nil
	}

	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return val, "", nil
	case map[string]interface{}:
		decision, _ := val["decision"].(string)
		reason, _ := val["reason"].(string)
		if decision == "" {
			return "", "", fmt.Errorf("policy result has no decision")
		}
		return decision, reason, nil
	default:
		return "", "", fmt.Errorf("unexpected policy result type %T", val)
	}
}

// DefaultPolicy allows the web search tool with a non-empty query of
// reasonable size and blocks everything else.
const DefaultPolicy = `
package tool_policy

import rego.v1

allowed_tools := {"web_search"}

max_input_length := 2000

default decision := {"decision": "allow", "reason": "default"}

decision := {"decision": "block", "reason": "unknown tool"} if {
	not input.tool_name in allowed_tools
} else := {"decision": "block", "reason": "empty input"} if {
	trim_space(input.input) == ""
} else := {"decision": "block", "reason": "input too long"} if {
	count(input.input) > max_input_length
}
`
