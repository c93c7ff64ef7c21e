// Package api provides HTTP handlers for the recommender.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Pavantext/NutriMood/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/recommend", h.Recommend)
	e.GET("/v1/sessions/:session_id/history", h.GetSessionHistory)
	e.POST("/v1/sessions/:session_id/reset", h.ResetSession)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
