package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gl11tchy/test-project-2/internal/pkg/session"
	"github.com/gl11tchy/test-project-2/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the session cookie into a request-scoped
// UserContext local for every request. It runs before route dispatch so that
// protected handlers only ever consult the context.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth keeps its own fiber session store on the OAuth begin/callback
	// routes; skip ours there to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/api/auth/oauth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		c.Locals(usercontext.ContextKey, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		c.Locals(usercontext.ContextKey, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	c.Locals(usercontext.ContextKey, usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   session.GetSessionValue(c, usercontext.KeyUserName),
		Email:      session.GetSessionValue(c, usercontext.KeyEmail),
		IsLoggedIn: true,
	})

	return c.Next()
}
