package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/focusmate-ai/focus-service/internal/api/dto"
	"github.com/focusmate-ai/focus-service/internal/api/respond"
	"github.com/focusmate-ai/focus-service/internal/service"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	user, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond.Success(c, http.StatusCreated, fiber.Map{
		"user": dto.FromUser(user),
	}, "Account created successfully. Please check your email to verify your account.")
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond.Success(c, http.StatusOK, dto.LoginResponse{
		User:      dto.FromUser(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, "Login successful")
}
