package http

import (
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

const (
	maxMessageLen = 8000
	maxUserIDLen  = 128
	defaultUserID = "default"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// Ask routes a user message through the agent chain.
func (h *Handler) Ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if n := utf8.RuneCountInString(req.Message); n == 0 || n > maxMessageLen {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message must be 1..8000 characters"})
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	if utf8.RuneCountInString(req.UserID) > maxUserIDLen {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id must be at most 128 characters"})
	}

	result, err := h.svc.Ask(c.Request().Context(), req.UserID, req.Message)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
