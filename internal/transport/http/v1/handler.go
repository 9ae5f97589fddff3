// Package v1 provides the public HTTP handlers.
package v1

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/agentflow/internal/domain"
	"github.com/xiaot623/agentflow/internal/service"
)

// DefaultHeartbeat is the stream keep-alive interval when none is configured.
const DefaultHeartbeat = 15 * time.Second

// Handler handles HTTP requests.
type Handler struct {
	service   *service.Service
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{
		service:   service,
		heartbeat: heartbeat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/runs", h.StartRun)
	e.GET("/v1/runs/:run_id", h.GetRun)
	e.GET("/v1/runs/:run_id/result", h.GetResult)
	e.GET("/v1/runs/:run_id/events", h.GetRunEvents)
	e.GET("/v1/runs/:run_id/events/stream", h.StreamEvents)
	e.GET("/v1/runs/:run_id/ws", h.StreamEventsWS)

	// Unversioned paths kept for existing frontends.
	e.POST("/run", h.StartRun)
	e.GET("/events/:run_id", h.StreamEvents)
	e.GET("/result/:run_id", h.GetResult)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, domain.ErrorResponse{Detail: msg})
}
