// Package runclient is an HTTP client for the agentflow run API.
package runclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/agentflow/internal/domain"
)

// ErrInProgress is returned by Result while the run has no result yet.
var ErrInProgress = errors.New("run still in progress")

// EventHandler is called for each event of a run.
type EventHandler func(ev domain.Event) error

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Detail)
}

// Client talks to an agentflow server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// NewClient creates a new run client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

// Start starts a run for query and returns its id.
func (c *Client) Start(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(domain.StartRunRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/runs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var out domain.StartRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.RunID, nil
}

// Result fetches a run's result. It returns ErrInProgress on 202.
func (c *Client) Result(ctx context.Context, runID string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/runs/"+runID+"/result", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read result: %w", err)
		}
		return json.RawMessage(data), nil
	case http.StatusAccepted:
		return nil, ErrInProgress
	default:
		return nil, apiError(resp)
	}
}

// StreamSSE reads the run's SSE stream and calls handler for each event
// until the server closes the stream.
func (c *Client) StreamSSE(ctx context.Context, runID string, handler EventHandler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/runs/"+runID+"/events/stream", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives the default request timeout.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return parseSSE(resp.Body, func(data string) error {
		ev, err := domain.DecodeEvent([]byte(data))
		if err != nil {
			return err
		}
		return handler(ev)
	})
}

// StreamWS reads the run's events over a WebSocket.
func (c *Client) StreamWS(ctx context.Context, runID string, handler EventHandler) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/v1/runs/" + runID + "/ws"
	conn, resp, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return apiError(resp)
		}
		return fmt.Errorf("failed to dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read message: %w", err)
		}
		ev, err := domain.DecodeEvent(data)
		if err != nil {
			return err
		}
		if err := handler(ev); err != nil {
			return err
		}
	}
}

// parseSSE calls onData with the data of each SSE event. Comment lines and
// fields other than data are ignored.
func parseSSE(reader io.Reader, onData func(data string) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var data string

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line marks end of event
		if line == "" {
			if data != "" {
				if err := onData(data); err != nil {
					return err
				}
				data = ""
			}
			continue
		}

		if strings.HasPrefix(line, "data:") {
			chunk := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data != "" {
				data += "\n" + chunk
			} else {
				data = chunk
			}
		}
	}

	if data != "" {
		if err := onData(data); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func apiError(resp *http.Response) error {
	var body domain.ErrorResponse
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &body); err != nil || body.Detail == "" {
		body.Detail = strings.TrimSpace(string(data))
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: body.Detail}
}
