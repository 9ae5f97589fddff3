package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MockClient is a mock implementation of LLMClient for local runs and tests.
type MockClient struct {
	// Delay is applied before every response.
	Delay time.Duration
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// Generate returns a canned response for prompt.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	return m.generateMockResponse(prompt), nil
}

// CreateChatCompletion returns a mock response.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	var lastUserMessage string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUserMessage = req.Messages[i].Content
			break
		}
	}

	content, err := m.Generate(ctx, lastUserMessage)
	if err != nil {
		return nil, err
	}

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      &ChatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: &Usage{
			PromptTokens:     len(lastUserMessage) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      (len(lastUserMessage) + len(content)) / 4,
		},
	}, nil
}

// generateMockResponse picks a response shape from the prompt.
func (m *MockClient) generateMockResponse(prompt string) string {
	if strings.Contains(prompt, "Generate a JSON report") {
		report := map[string]interface{}{
			"title":       "[MOCK] Report",
			"summary":     "This is a mock report generated without an LLM backend.",
			"key_points":  []string{"mock key point"},
			"limitations": []string{"generated by the mock client"},
		}
		data, _ := json.Marshal(report)
		return "```json\n" + string(data) + "\n```"
	}

	if prompt == "" {
		return "[MOCK] This is a mock response from the LLM client."
	}

	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(prompt, 100))
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
