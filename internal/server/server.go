package server

import (
	"doj-chatbot-client/internal/bootstrap"
	"doj-chatbot-client/internal/config"
	"doj-chatbot-client/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		Views:                 container.Views,
		DisableStartupMessage: true,
		BodyLimit:             64 * 1024,
		// form values end up in long-lived chat state
		Immutable: true,
	})

	// OpenTelemetry tracing middleware (no-op unless a tracer provider is set)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Every page passes the route guard before its handler runs
	app.Use(serverutils.RouteGuard(container.Router, "/api"))

	// Form posts must carry a token issued with one of our pages
	app.Use(serverutils.CSRF("/api"))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// Run serves on loopback only: the process holds the user's bearer token.
func (s *Server) Run() error {
	addr := "127.0.0.1:" + s.cfg.App.Port
	s.container.Logger.Info("Server", "Web front-end listening", map[string]interface{}{
		"url": "http://" + addr,
		"api": s.cfg.Api.BaseURL,
	})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.ApiController.RegisterRoutes(app)

	c.PageController.RegisterRoutes(app)
	c.AuthController.RegisterRoutes(app)
	c.ChatController.RegisterRoutes(app)
}
