package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	service  string
	checkers map[string]Checker
}

// NewHealthHandler creates a health handler. Readiness runs every checker.
func NewHealthHandler(service string, checkers map[string]Checker) *HealthHandler {
	return &HealthHandler{service: service, checkers: checkers}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": h.service})
}

// Readiness handles GET /readyz, failing with 503 when any dependency is down.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	code := http.StatusOK
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if code != http.StatusOK {
		state = "unavailable"
	}
	return c.JSON(code, map[string]any{"status": state, "service": h.service, "checks": checks})
}
