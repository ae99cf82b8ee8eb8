package constants

// API route constants
const (
	APIRoute = "/api"

	HealthRoute = "/api/health"

	AuthRegisterRoute       = "/api/auth/register"
	AuthLoginRoute          = "/api/auth/login"
	AuthLogoutRoute         = "/api/auth/logout"
	AuthForgotPasswordRoute = "/api/auth/forgot-password"
	AuthResetPasswordRoute  = "/api/auth/reset-password"
	AuthOAuthRoute          = "/api/auth/oauth/:provider"
	AuthOAuthCallbackRoute  = "/api/auth/oauth/:provider/callback"

	UserRoute = "/api/user"
	ChatRoute = "/api/chat"

	StripeCheckoutRoute = "/api/stripe/checkout"
	StripePortalRoute   = "/api/stripe/portal"
	StripeWebhookRoute  = "/api/webhooks/stripe"
)
