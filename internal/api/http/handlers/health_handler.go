package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/focusmate-ai/focus-service/internal/api/respond"
	"github.com/focusmate-ai/focus-service/internal/persistence"
)

// HealthHandler reports service and database health.
type HealthHandler struct {
	db      *persistence.Executor
	timeout time.Duration
	version string
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(db *persistence.Executor, timeout time.Duration, version string) *HealthHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HealthHandler{db: db, timeout: timeout, version: version}
}

// Check handles GET /health. The database probe races a timer so a hung
// connection cannot stall the endpoint.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	report := h.db.Probe(c.UserContext(), h.timeout)

	data := fiber.Map{
		"version":  h.version,
		"database": report,
	}
	if !report.Success {
		return respond.Error(c, http.StatusServiceUnavailable, "Service is unhealthy", data)
	}
	return respond.Success(c, http.StatusOK, data, "Service is healthy")
}
