package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const defaultRunsLimit = 20

// GetRun fetches a full run record.
func (h *Handler) GetRun(c echo.Context) error {
	runID := c.Param("run_id")

	run, err := h.svc.GetRun(c.Request().Context(), runID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if run == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
	}
	return c.JSON(http.StatusOK, run)
}

// ListRuns returns the most recent runs for a user.
func (h *Handler) ListRuns(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		userID = defaultUserID
	}

	limit := defaultRunsLimit
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}

	runs, err := h.svc.ListRuns(c.Request().Context(), userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"items": runs})
}
