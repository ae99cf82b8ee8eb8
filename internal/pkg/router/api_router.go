package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/gl11tchy/test-project-2/app/controllers"
	"github.com/gl11tchy/test-project-2/internal/pkg/constants"
	"github.com/gl11tchy/test-project-2/internal/pkg/middleware"
	"github.com/gl11tchy/test-project-2/internal/pkg/oauth"
	"github.com/gl11tchy/test-project-2/internal/pkg/session"
)

// ApiRouter wires the HTTP surface to the controllers. Controllers are
// constructed once at startup and passed in; the router never reaches for
// globals.
type ApiRouter struct {
	auth    *controllers.AuthController
	oauth   *controllers.OAuthController
	user    *controllers.UserController
	chat    *controllers.ChatController
	billing *controllers.BillingController
}

func NewApiRouter(
	auth *controllers.AuthController,
	oauthCtl *controllers.OAuthController,
	user *controllers.UserController,
	chat *controllers.ChatController,
	billing *controllers.BillingController,
) *ApiRouter {
	return &ApiRouter{
		auth:    auth,
		oauth:   oauthCtl,
		user:    user,
		chat:    chat,
		billing: billing,
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Credential endpoints are rate limited; everything else is not.
	authLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})
	app.Post(constants.AuthRegisterRoute, authLimiter, h.auth.HandleRegister)
	app.Post(constants.AuthLoginRoute, authLimiter, h.auth.HandleLogin)
	app.Post(constants.AuthLogoutRoute, h.auth.HandleLogout)
	app.Post(constants.AuthForgotPasswordRoute, authLimiter, h.auth.HandleForgotPassword)
	app.Post(constants.AuthResetPasswordRoute, authLimiter, h.auth.HandleResetPassword)

	app.Get(constants.AuthOAuthRoute, h.oauth.HandleBeginAuth)
	app.Get(constants.AuthOAuthCallbackRoute, h.oauth.HandleAuthCallback)

	// Stripe calls this endpoint directly; it authenticates via signature,
	// not via session.
	app.Post(constants.StripeWebhookRoute, h.billing.HandleWebhook)

	// Session-protected API
	app.Get(constants.UserRoute, middleware.RequireAPISessionAuth, h.user.HandleGetUser)
	app.Post(constants.ChatRoute, middleware.RequireAPISessionAuth, h.chat.HandleChat)
	app.Post(constants.StripeCheckoutRoute, middleware.RequireAPISessionAuth, h.billing.HandleCreateCheckout)
	app.Post(constants.StripePortalRoute, middleware.RequireAPISessionAuth, h.billing.HandleCreatePortal)
}
