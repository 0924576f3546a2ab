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

// AIHandler exposes the chat proxy and interaction history.
type AIHandler struct {
	ai   *service.AIService
	gate *auth.Gate
}

// NewAIHandler constructs the handler.
func NewAIHandler(aiService *service.AIService, gate *auth.Gate) *AIHandler {
	return &AIHandler{ai: aiService, gate: gate}
}

// Chat handles POST /ai/chat. Authentication is resolved inside the
// handler because clients may opt out per request; only authenticated
// exchanges are rate limited and recorded.
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	requireAuth := req.RequireAuth == nil || *req.RequireAuth

	userID := ""
	if requireAuth {
		principal, err := h.gate.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		userID = principal.ID
	}

	result, err := h.ai.Chat(c.UserContext(), userID, req.Messages, req.InteractionType, req.Context, req.Options)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, dto.FromChatResult(result), "")
}

// Interactions handles GET /ai/interactions.
func (h *AIHandler) Interactions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	interactions, err := h.ai.History(c.UserContext(), principal.ID, c.Query("type"), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{
		"interactions": dto.FromInteractions(interactions),
	}, "")
}
