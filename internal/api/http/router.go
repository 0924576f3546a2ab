package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/focusmate-ai/focus-service/internal/api/http/handlers"
	"github.com/focusmate-ai/focus-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Tasks    *handlers.TasksHandler
	Sessions *handlers.SessionsHandler
	AI       *handlers.AIHandler
	Gate     *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Check)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	// chat resolves auth per request
	app.Post("/ai/chat", cfg.AI.Chat)

	protected := app.Group("", auth.Middleware(cfg.Gate))
	protected.Get("/users/profile", cfg.Users.Profile)
	protected.Put("/users/profile", cfg.Users.UpdateProfile)
	protected.Get("/users/me/data", cfg.Users.Data)

	protected.Get("/tasks", cfg.Tasks.List)
	protected.Post("/tasks", cfg.Tasks.Create)
	protected.Put("/tasks/:id", cfg.Tasks.Update)
	protected.Delete("/tasks/:id", cfg.Tasks.Delete)
	protected.Put("/tasks/:id/toggle", cfg.Tasks.Toggle)

	protected.Get("/sessions", cfg.Sessions.List)
	protected.Post("/sessions", cfg.Sessions.Create)
	protected.Put("/sessions/:id", cfg.Sessions.Complete)

	protected.Get("/ai/interactions", cfg.AI.Interactions)
}
