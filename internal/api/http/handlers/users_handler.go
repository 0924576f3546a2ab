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

// UsersHandler exposes profile and aggregate-data endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Profile handles GET /users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	user, err := h.users.Profile(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{"user": dto.FromUser(user)}, "")
}

// UpdateProfile handles PUT /users/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	user, err := h.users.UpdateProfile(c.UserContext(), principal.ID, req.Username, req.Email)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, fiber.Map{"user": dto.FromUser(user)}, "Profile updated")
}

// Data handles GET /users/me/data.
func (h *UsersHandler) Data(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required", nil)
	}

	data, err := h.users.Data(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, dto.FromUserData(data), "")
}
