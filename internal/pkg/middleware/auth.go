package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gl11tchy/test-project-2/internal/pkg/usercontext"
)

// RequireAPISessionAuth gates protected API routes. Unauthenticated requests
// get the uniform Unauthorized envelope before any handler runs; no detail
// about why is leaked.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
	return c.Next()
}
