package server

import (
	"context"
	"log"

	"gym-statistics/internal/bootstrap"
	"gym-statistics/internal/config"
	"gym-statistics/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app  *fiber.App
	name string
	port string
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             64 * 1024,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	return app
}

// NewBot serves the dialog webhook.
func NewBot(cfg *config.Config, c *bootstrap.BotContainer) *Server {
	app := newApp(cfg)

	c.HealthController.RegisterRoutes(app)
	api := app.Group("/api")
	c.DialogController.RegisterRoutes(api)

	return &Server{app: app, name: "Bot", port: cfg.App.BotPort}
}

// NewDashboard serves the dashboard API and its websocket.
func NewDashboard(cfg *config.Config, c *bootstrap.DashboardContainer) *Server {
	app := newApp(cfg)

	c.HealthController.RegisterRoutes(app)
	c.DashboardWSHandler.RegisterRoutes(app)
	api := app.Group("/api")
	c.DashboardController.RegisterRoutes(api)

	return &Server{app: app, name: "Dashboard", port: cfg.App.Port}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ %s server is running on http://localhost:%s", s.name, s.port)
	return s.app.Listen(":" + s.port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
