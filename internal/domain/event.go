package domain

import (
	"encoding/json"
	"fmt"
)

// Event is a progress notification produced during a run. The set of
// implementations is closed: AgentStarted, ToolCalled, AgentCompleted,
// FinalReport and RunFailed. Each marshals to its type tag plus its fields.
type Event interface {
	EventType() EventType
	isEvent()
}

// AgentStarted is emitted when a stage begins.
type AgentStarted struct {
	Agent string
}

// ToolCalled is emitted immediately before a stage calls an external tool.
type ToolCalled struct {
	Agent string
	Tool  string
}

// AgentCompleted is emitted when a stage has returned its output.
type AgentCompleted struct {
	Agent string
}

// FinalReport carries the run's result once it has been stored.
type FinalReport struct {
	Data json.RawMessage
}

// RunFailed is emitted when a run aborts on a fatal error.
type RunFailed struct {
	Agent   string
	Code    string
	Message string
}

func (AgentStarted) EventType() EventType   { return EventTypeAgentStarted }
func (ToolCalled) EventType() EventType     { return EventTypeToolCalled }
func (AgentCompleted) EventType() EventType { return EventTypeAgentCompleted }
func (FinalReport) EventType() EventType    { return EventTypeFinalReport }
func (RunFailed) EventType() EventType      { return EventTypeError }

func (AgentStarted) isEvent()   {}
func (ToolCalled) isEvent()     {}
func (AgentCompleted) isEvent() {}
func (FinalReport) isEvent()    {}
func (RunFailed) isEvent()      {}

// wireEvent is the JSON shape shared by all variants.
type wireEvent struct {
	Type    EventType       `json:"type"`
	Agent   string          `json:"agent,omitempty"`
	Tool    string          `json:"tool,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (e AgentStarted) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{Type: e.EventType(), Agent: e.Agent})
}

func (e ToolCalled) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{Type: e.EventType(), Agent: e.Agent, Tool: e.Tool})
}

func (e AgentCompleted) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{Type: e.EventType(), Agent: e.Agent})
}

func (e FinalReport) MarshalJSON() ([]byte, error) {
	data := e.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	return json.Marshal(wireEvent{Type: e.EventType(), Data: data})
}

func (e RunFailed) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{Type: e.EventType(), Agent: e.Agent, Code: e.Code, Message: e.Message})
}

// DecodeEvent parses the wire form of an event back into its variant.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	switch w.Type {
	case EventTypeAgentStarted:
		return AgentStarted{Agent: w.Agent}, nil
	case EventTypeToolCalled:
		return ToolCalled{Agent: w.Agent, Tool: w.Tool}, nil
	case EventTypeAgentCompleted:
		return AgentCompleted{Agent: w.Agent}, nil
	case EventTypeFinalReport:
		return FinalReport{Data: w.Data}, nil
	case EventTypeError:
		return RunFailed{Agent: w.Agent, Code: w.Code, Message: w.Message}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", w.Type)
	}
}
