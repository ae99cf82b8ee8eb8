package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gl11tchy/test-project-2/app/controllers"
	"github.com/gl11tchy/test-project-2/internal/pkg/ai"
	"github.com/gl11tchy/test-project-2/internal/pkg/billing"
	"github.com/gl11tchy/test-project-2/internal/pkg/cache"
	"github.com/gl11tchy/test-project-2/internal/pkg/database"
	"github.com/gl11tchy/test-project-2/internal/pkg/env"
	"github.com/gl11tchy/test-project-2/internal/pkg/metrics/counter"
	"github.com/gl11tchy/test-project-2/internal/pkg/router"
	"github.com/gl11tchy/test-project-2/internal/pkg/usage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8787")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	billing.InitStripe()

	db := database.GetDB()

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "test-project-2",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// The SPA runs on its own origin and sends the session cookie.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("APP_URL", "http://localhost:3000"),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))

	// fiber metrics plus the redis-backed counters, same credentials
	metricsAuth := basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
		},
	})
	app.Get("/metrics", metricsAuth, monitor.New())
	metricsCtl := controllers.NewMetricsController(counter.ChatRequests)
	app.Get("/metrics/chat-requests", metricsAuth, metricsCtl.HandleChatRequests)

	// Shared services, constructed once and handed to the controllers.
	billingSvc := billing.NewServiceFromDB(db)
	ledger := usage.NewLedgerFromDB(db)
	aiClient := ai.NewClientFromEnv()

	apiRouter := router.NewApiRouter(
		controllers.NewAuthController(db),
		controllers.NewOAuthController(db),
		controllers.NewUserController(db, billingSvc, ledger),
		controllers.NewChatController(billingSvc, ledger, aiClient),
		controllers.NewBillingController(billingSvc, env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
	)

	// ROUTER
	router.InstallRouter(app, apiRouter)

	return app
}
