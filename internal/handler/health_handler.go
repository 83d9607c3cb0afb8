package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves unauthenticated liveness checks.
type HealthHandler struct {
	allowedOrigins []string
	now            func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(allowedOrigins []string) *HealthHandler {
	return &HealthHandler{allowedOrigins: allowedOrigins, now: time.Now}
}

// Root godoc
// @Summary API banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "Jiffy Apply API is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "OK",
		"timestamp":      h.now().UTC().Format(time.RFC3339),
		"allowedOrigins": h.allowedOrigins,
	})
}
