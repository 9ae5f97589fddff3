package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"

	"github.com/xiaot623/agentflow/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func formatEvent(ev domain.Event) string {
	switch e := ev.(type) {
	case domain.AgentStarted:
		return cyan("▶ " + e.Agent + " started")
	case domain.ToolCalled:
		return yellow(fmt.Sprintf("  ⚙ %s called %s", e.Agent, e.Tool))
	case domain.AgentCompleted:
		return green("✓ " + e.Agent + " completed")
	case domain.FinalReport:
		return bold("Final report") + "\n" + formatReport(e.Data)
	case domain.RunFailed:
		if e.Agent != "" {
			return red(fmt.Sprintf("✗ %s: %s", e.Agent, e.Message))
		}
		return red("✗ " + e.Message)
	default:
		return gray(string(ev.EventType()))
	}
}

func formatReport(data json.RawMessage) string {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}
