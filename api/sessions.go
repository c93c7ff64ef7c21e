package api

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Pavantext/NutriMood/domain"
)

// GetSessionHistory returns the recorded exchanges for a session.
// GET /v1/sessions/:session_id/history
func (h *Handler) GetSessionHistory(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	exchanges, err := h.svc.History(ctx, sessionID)
	if err != nil {
		log.Printf("ERROR: failed to get history: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get history"})
	}
	if exchanges == nil {
		exchanges = []domain.Exchange{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"exchanges":  exchanges,
	})
}

// ResetSession discards a session's conversation state.
// POST /v1/sessions/:session_id/reset
func (h *Handler) ResetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	if err := h.svc.ResetSession(ctx, sessionID); err != nil {
		log.Printf("ERROR: failed to reset session: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to reset session"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}
