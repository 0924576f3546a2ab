package auth

import (
	"github.com/gofiber/fiber/v2"
)

const principalKey = "auth_principal"

// Middleware enforces authentication for protected routes and stores the
// resolved principal in the request context.
func Middleware(gate *Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := gate.Authenticate(c.UserContext(), c.Get("Authorization"))
		if err != nil {
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
