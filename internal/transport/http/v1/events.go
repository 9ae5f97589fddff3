package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/agentflow/internal/domain"
	"github.com/xiaot623/agentflow/internal/stream"
)

var errHeartbeat = errors.New("heartbeat interval elapsed")

// subscribe claims runID's stream, writing the HTTP error itself when it
// cannot. A nil subscription with nil error means a response was written.
func (h *Handler) subscribe(c echo.Context, runID string) (*stream.Subscription, error) {
	sub, err := h.service.Subscribe(runID)
	switch {
	case err == nil:
		return sub, nil
	case errors.Is(err, domain.ErrRunNotFound):
		return nil, detail(c, http.StatusNotFound, "Run not found")
	case errors.Is(err, domain.ErrSubscriberActive):
		return nil, detail(c, http.StatusConflict, "Run already has an active stream")
	default:
		log.Errorf("failed to subscribe to run %s: %v", runID, err)
		return nil, detail(c, http.StatusInternalServerError, "Failed to open stream")
	}
}

// next waits for the next event for at most one heartbeat interval.
func (h *Handler) next(ctx context.Context, sub *stream.Subscription) (domain.Event, error) {
	waitCtx, cancel := context.WithTimeout(ctx, h.heartbeat)
	defer cancel()

	ev, err := sub.Next(waitCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, errHeartbeat
	}
	return ev, err
}

// StreamEvents streams a run's events via SSE until the run ends.
// GET /v1/runs/:run_id/events/stream
//
// Each event is one "data:" frame carrying the event JSON. Comment lines are
// written while the run is idle to keep proxies from closing the connection.
func (h *Handler) StreamEvents(c echo.Context) error {
	ctx := c.Request().Context()
	runID := c.Param("run_id")

	sub, err := h.subscribe(c, runID)
	if sub == nil {
		return err
	}
	defer sub.Close()

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()

	var id int64
	for {
		ev, err := h.next(ctx, sub)
		switch {
		case err == nil:
			id++
			if err := writeSSEEvent(c, id, ev); err != nil {
				log.Warnf("failed to send event for run %s: %v", runID, err)
				return nil
			}
		case errors.Is(err, errHeartbeat):
			if _, err := fmt.Fprint(c.Response(), ": ping\n\n"); err != nil {
				return nil
			}
			c.Response().Flush()
		case errors.Is(err, stream.ErrEnded):
			return nil
		default:
			// Client disconnected; the run keeps going and the remaining
			// events stay queued for the next subscriber.
			return nil
		}
	}
}

// writeSSEEvent sends a single event in SSE format.
func writeSSEEvent(c echo.Context, id int64, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(c.Response(), "id: %d\ndata: %s\n\n", id, data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
