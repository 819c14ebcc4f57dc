package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/service"
)

const (
	callerKey = "caller"
	userKey   = "user"
)

// RequireAuth validates the bearer token against the current account state
// and stores the resolved caller for downstream handlers.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format, use: Bearer <token>"})
		}

		caller, user, err := authService.Authenticate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(callerKey, caller)
		c.Locals(userKey, user)
		c.Locals(loggerKey, LoggerFrom(c).With(zapCaller(caller)...))
		return c.Next()
	}
}

// CallerFrom returns the caller set by RequireAuth, or nil on public routes.
func CallerFrom(c *fiber.Ctx) *authz.Caller {
	caller, _ := c.Locals(callerKey).(*authz.Caller)
	return caller
}
