// Package http provides the HTTP server for agentflow.
package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiaot623/agentflow/internal/service"
	v1 "github.com/xiaot623/agentflow/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server: the run API, the event
// streams and the metrics endpoint.
func NewServer(svc *service.Service, heartbeat time.Duration, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, heartbeat)
	v1Handler.RegisterRoutes(e)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return e
}
