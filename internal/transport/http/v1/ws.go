package v1

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/agentflow/internal/stream"
)

const wsWriteTimeout = 10 * time.Second

// StreamEventsWS streams a run's events over a WebSocket, one text frame per
// event, and sends a normal close frame after the last one.
// GET /v1/runs/:run_id/ws
func (h *Handler) StreamEventsWS(c echo.Context) error {
	runID := c.Param("run_id")

	sub, err := h.subscribe(c, runID)
	if sub == nil {
		return err
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Warnf("failed to upgrade websocket for run %s: %v", runID, err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The read loop only exists to notice the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		ev, err := h.next(ctx, sub)
		switch {
		case err == nil:
			data, err := json.Marshal(ev)
			if err != nil {
				log.Errorf("failed to marshal event: %v", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return nil
			}
		case errors.Is(err, errHeartbeat):
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case errors.Is(err, stream.ErrEnded):
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
			return nil
		default:
			return nil
		}
	}
}
