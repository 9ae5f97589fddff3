package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGenerate(t *testing.T) {
	var got ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: got.Model,
			Choices: []Choice{
				{Message: &ChatMessage{Role: "assistant", Content: "hello back"}, FinishReason: "stop"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret", 5*time.Second, Options{Model: "m1", Temperature: Float64(0.2), MaxTokens: 1024})
	text, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", text)

	assert.Equal(t, "m1", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.2, *got.Temperature)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, 1024, *got.MaxTokens)
	assert.False(t, got.Stream)
}

func TestClientGenerateSendsZeroTemperature(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, Options{Model: "m1", Temperature: Float64(0)})
	_, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Contains(t, raw, "temperature")
	assert.JSONEq(t, "0", string(raw["temperature"]))

	client = NewClient(server.URL, "", time.Second, Options{Model: "m1"})
	_, err = client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotContains(t, raw, "temperature")
}

func TestClientGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, Options{Model: "m1"})
	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[429]")
	assert.Contains(t, err.Error(), "slow down")
}

func TestClientGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second, Options{})
	_, err := client.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestMockClientReportPromptReturnsJSON(t *testing.T) {
	m := NewMockClient()
	text, err := m.Generate(context.Background(), "Generate a JSON report with this schema:\n...")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "```json"))
	assert.Contains(t, text, `"key_points"`)

	text, err = m.Generate(context.Background(), "You are a research agent.")
	require.NoError(t, err)
	assert.Contains(t, text, "[MOCK]")
}

func TestMockClientHonorsContext(t *testing.T) {
	m := &MockClient{Delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Generate(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLLMClientSelectsMock(t *testing.T) {
	c := NewLLMClient("mock", "http://unused", "", time.Second, Options{})
	_, ok := c.(*MockClient)
	assert.True(t, ok)

	c = NewLLMClient("", "http://example", "k", time.Second, Options{})
	_, ok = c.(*Client)
	assert.True(t, ok)
}
