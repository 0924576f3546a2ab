// Package respond builds the uniform success/error JSON envelopes and
// selects CORS headers from the configured allow-list. Every handler
// returns through this package; none construct raw response shapes.
package respond

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/focusmate-ai/focus-service/internal/config"
)

// AllowedOrigin returns the request origin only when it exactly matches
// the allow-list; otherwise the fixed default production origin. This is
// an exact match, never a wildcard, since responses are credentialed.
func AllowedOrigin(cfg config.CORSConfig, requestOrigin string) string {
	for _, origin := range cfg.AllowedOrigins {
		if origin == requestOrigin {
			return requestOrigin
		}
	}
	return cfg.DefaultOrigin
}

// ApplyCORS sets the per-request CORS headers.
func ApplyCORS(c *fiber.Ctx, cfg config.CORSConfig) {
	c.Set("Access-Control-Allow-Origin", AllowedOrigin(cfg, c.Get("Origin")))
	c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Vary", "Origin")
}

// Success writes a success envelope with the given status code.
func Success(c *fiber.Ctx, status int, data any, message string) error {
	if message == "" {
		message = "Success"
	}
	return c.Status(status).JSON(fiber.Map{
		"success":   true,
		"message":   message,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Error writes an error envelope. Details are merged at the top level of
// the body; the message must already be category-appropriate and generic.
func Error(c *fiber.Ctx, status int, message string, details map[string]any) error {
	body := fiber.Map{
		"success":   false,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range details {
		if k == "success" || k == "message" || k == "timestamp" {
			continue
		}
		body[k] = v
	}
	return c.Status(status).JSON(body)
}
