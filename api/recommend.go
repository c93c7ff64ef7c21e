package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RecommendRequest is the chat turn request body.
type RecommendRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// Recommend runs one conversation turn.
// POST /v1/recommend
func (h *Handler) Recommend(c echo.Context) error {
	ctx := c.Request().Context()

	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	result, err := h.svc.HandleTurn(ctx, req.SessionID, req.Query)
	if err != nil {
		log.Printf("ERROR: failed to handle turn: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to handle turn"})
	}

	return c.JSON(http.StatusOK, result)
}
