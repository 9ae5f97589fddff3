package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/xiaot623/agentflow/internal/domain"
)

func TestFormatEvent(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		ev   domain.Event
		want string
	}{
		{domain.AgentStarted{Agent: "Research Agent"}, "▶ Research Agent started"},
		{domain.ToolCalled{Agent: "Research Agent", Tool: "web_search"}, "  ⚙ Research Agent called web_search"},
		{domain.AgentCompleted{Agent: "Report Agent"}, "✓ Report Agent completed"},
		{domain.RunFailed{Agent: "Analysis Agent", Message: "Analysis Agent failed to produce output"}, "✗ Analysis Agent: Analysis Agent failed to produce output"},
		{domain.RunFailed{Message: "run failed"}, "✗ run failed"},
	}
	for _, tt := range tests {
		if got := formatEvent(tt.ev); got != tt.want {
			t.Fatalf("formatEvent(%T) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestFormatReport(t *testing.T) {
	got := formatReport(json.RawMessage(`{"title":"t","key_points":["a"]}`))
	if !strings.Contains(got, "\n  \"title\": \"t\"") {
		t.Fatalf("expected indented report, got %q", got)
	}
	if got := formatReport(json.RawMessage(`not json`)); got != "not json" {
		t.Fatalf("expected raw passthrough, got %q", got)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"run", "stream", "result"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("sse") == nil {
		t.Fatal("expected --sse flag")
	}
}
