package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/agentflow/internal/domain"
)

// StartRun starts a pipeline run.
// POST /v1/runs
func (h *Handler) StartRun(c echo.Context) error {
	var req domain.StartRunRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.service.StartRun(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrQueryRequired) {
			return detail(c, http.StatusBadRequest, "Query is required")
		}
		log.Errorf("failed to start run: %v", err)
		return detail(c, http.StatusInternalServerError, "Failed to start run")
	}

	return c.JSON(http.StatusOK, resp)
}

// GetResult returns a run's stored result.
// GET /v1/runs/:run_id/result
func (h *Handler) GetResult(c echo.Context) error {
	runID := c.Param("run_id")

	result, err := h.service.GetResult(c.Request().Context(), runID)
	switch {
	case err == nil:
		return c.JSONBlob(http.StatusOK, result)
	case errors.Is(err, domain.ErrRunNotFound):
		return detail(c, http.StatusNotFound, "Run not found")
	case errors.Is(err, domain.ErrRunInProgress):
		return detail(c, http.StatusAccepted, "Run still in progress")
	case errors.Is(err, domain.ErrRunFailed):
		return detail(c, http.StatusInternalServerError, "Run failed")
	default:
		log.Errorf("failed to get result for run %s: %v", runID, err)
		return detail(c, http.StatusInternalServerError, "Failed to get result")
	}
}

// GetRun returns a run record.
// GET /v1/runs/:run_id
func (h *Handler) GetRun(c echo.Context) error {
	runID := c.Param("run_id")

	run, err := h.service.GetRun(c.Request().Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return detail(c, http.StatusNotFound, "Run not found")
		}
		log.Errorf("failed to get run %s: %v", runID, err)
		return detail(c, http.StatusInternalServerError, "Failed to get run")
	}

	return c.JSON(http.StatusOK, run)
}

// GetRunEvents replays a run's recorded events.
// GET /v1/runs/:run_id/events
func (h *Handler) GetRunEvents(c echo.Context) error {
	runID := c.Param("run_id")
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterSeq := int64(0)
	if s := c.QueryParam("after_seq"); s != "" {
		if val, err := strconv.ParseInt(s, 10, 64); err == nil {
			afterSeq = val
		}
	}

	resp, err := h.service.GetRunEvents(c.Request().Context(), runID, afterSeq, limit)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			return detail(c, http.StatusNotFound, "Run not found")
		}
		log.Errorf("failed to get events for run %s: %v", runID, err)
		return detail(c, http.StatusInternalServerError, "Failed to get run events")
	}

	return c.JSON(http.StatusOK, resp)
}
