package pipeline

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/xiaot623/agentflow/internal/domain"
)

// ParseReport converts the report stage's raw text into the run's result.
// Markdown code fences are stripped and the text is parsed as a JSON object,
// with a repair pass for near-JSON. Anything else is wrapped as raw output.
func ParseReport(raw string) json.RawMessage {
	text := stripFences(raw)

	if obj, ok := asObject(text); ok {
		return obj
	}
	if repaired, err := jsonrepair.JSONRepair(text); err == nil {
		if obj, ok := asObject(repaired); ok {
			return obj
		}
	}

	out, _ := json.Marshal(domain.RawOutput{RawOutput: text})
	return out
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
		text = strings.TrimSpace(text)
	}
	return text
}

func asObject(text string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}
