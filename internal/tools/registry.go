// Package tools holds the external tools stages may call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Func defines a tool executor.
type Func func(ctx context.Context, input string) (string, error)

// Policy decides whether a tool call may run.
type Policy interface {
	Evaluate(ctx context.Context, input interface{}) (decision string, reason string, err error)
}

// Policy decisions.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// BlockedError is returned when policy blocks a tool call.
type BlockedError struct {
	Tool   string
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("tool %s blocked by policy", e.Tool)
	}
	return fmt.Sprintf("tool %s blocked by policy: %s", e.Tool, e.Reason)
}

// ErrUnknownTool is returned for tool names with no executor.
var ErrUnknownTool = errors.New("no executor registered")

// Call outcomes reported to a CallObserver.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeBlocked = "blocked"
)

// CallObserver is told the outcome of every executed tool call.
type CallObserver func(toolName, outcome string)

// Registry stores tool executors keyed by tool name.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Func
	policy    Policy
	observe   CallObserver
}

// Option configures a Registry.
type Option func(*Registry)

// WithCallObserver registers a callback for tool call outcomes.
func WithCallObserver(fn CallObserver) Option {
	return func(r *Registry) {
		r.observe = fn
	}
}

// NewRegistry creates an empty tool registry. A nil policy allows every call.
func NewRegistry(policy Policy, opts ...Option) *Registry {
	r := &Registry{
		executors: make(map[string]Func),
		policy:    policy,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a new executor for a tool name.
func (r *Registry) Register(toolName string, exec Func) error {
	if toolName == "" {
		return fmt.Errorf("tool name is required")
	}
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[toolName]; exists {
		return fmt.Errorf("executor already registered for %s", toolName)
	}
	r.executors[toolName] = exec
	return nil
}

// MustRegister adds an executor or panics.
func (r *Registry) MustRegister(toolName string, exec Func) {
	if err := r.Register(toolName, exec); err != nil {
		panic(err)
	}
}

// Execute checks policy and runs the executor for the tool name.
func (r *Registry) Execute(ctx context.Context, toolName string, input string) (string, error) {
	if toolName == "" {
		return "", fmt.Errorf("tool name is required")
	}
	r.mu.RLock()
	exec := r.executors[toolName]
	r.mu.RUnlock()
	if exec == nil {
		return "", fmt.Errorf("%w for %s", ErrUnknownTool, toolName)
	}

	if r.policy != nil {
		decision, reason, err := r.policy.Evaluate(ctx, map[string]interface{}{
			"tool_name": toolName,
			"input":     input,
		})
		if err != nil {
			r.report(toolName, OutcomeError)
			return "", fmt.Errorf("policy evaluation failed: %w", err)
		}
		if decision == DecisionBlock {
			r.report(toolName, OutcomeBlocked)
			return "", &BlockedError{Tool: toolName, Reason: reason}
		}
	}

	out, err := exec(ctx, input)
	if err != nil {
		r.report(toolName, OutcomeError)
		return "", err
	}
	r.report(toolName, OutcomeOK)
	return out, nil
}

func (r *Registry) report(toolName, outcome string) {
	if r.observe != nil {
		r.observe(toolName, outcome)
	}
}

// Bound is a registry entry usable as a single-method tool.
type Bound struct {
	registry *Registry
	name     string
}

// Tool binds name to the registry.
func (r *Registry) Tool(name string) *Bound {
	return &Bound{registry: r, name: name}
}

// Invoke runs the bound tool.
func (b *Bound) Invoke(ctx context.Context, input string) (string, error) {
	return b.registry.Execute(ctx, b.name, input)
}
