package cmd

import (
	"erp-backend/database"
	"erp-backend/logger"
	"erp-backend/middlewares"
	"erp-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Example: `  # Listen on $PORT (default 8080)
  erp-backend serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newApp builds the fiber app with the global middleware stack and routes.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes(),
	})

	app.Use(middlewares.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		ExposeHeaders:    "X-Request-ID, Idempotent-Replayed",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	routes.Register(app)
	return app
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if err := cfg.ValidateAuth(); err != nil {
		return err
	}
	if err := database.Connect(cfg); err != nil {
		return err
	}

	app := newApp()
	log.Info().
		Str("port", cfg.Port).
		Str("version", version).
		Msg("API server starting")
	return app.Listen(":" + cfg.Port)
}
