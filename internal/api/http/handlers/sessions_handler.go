package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/focusmate-ai/focus-service/internal/api/dto"
	"github.com/focusmate-ai/focus-service/internal/api/respond"
	"github.com/focusmate-ai/focus-service/internal/auth"
	"github.com/focusmate-ai/focus-service/internal/service"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// SessionsHandler exposes focus session endpoints.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs the handler.
func NewSessionsHandler(sessionService *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessionService}
}

// List handles GET /sessions.
func (h *SessionsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	limit := c.QueryInt("limit", 0)
	sessions, stats, err := h.sessions.History(c.UserContext(), principal.ID, limit)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{
		"sessions": dto.FromSessions(sessions),
		"stats":    stats,
	}, "")
}

// Create handles POST /sessions.
func (h *SessionsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	var req dto.SessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	session, err := h.sessions.Start(c.UserContext(), principal.ID, req.SessionType, req.DurationMinutes, req.StartedAt, req.Notes)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusCreated, fiber.Map{"session": dto.FromSession(session)}, "Session started")
}

// Complete handles PUT /sessions/:id.
func (h *SessionsHandler) Complete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	var req dto.SessionCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	session, err := h.sessions.Complete(c.UserContext(), principal.ID, c.Params("id"), req.CompletedAt, req.Notes)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{"session": dto.FromSession(session)}, "Session completed")
}
