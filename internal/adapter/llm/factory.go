package llm

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// ModeMock selects the mock client.
const ModeMock = "MOCK"

// NewLLMClient creates an LLM client for mode.
// If mode is MOCK, returns a MockClient; otherwise returns a real Client.
func NewLLMClient(mode, baseURL, apiKey string, timeout time.Duration, opts Options) LLMClient {
	if strings.EqualFold(mode, ModeMock) {
		log.Info("LLM_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	if apiKey == "" {
		log.Warn("no LLM API key configured; requests will be sent unauthenticated")
	}
	return NewClient(baseURL, apiKey, timeout, opts)
}
