package server

import (
	"context"

	"orl-assistant/internal/bootstrap"
	"orl-assistant/internal/config"
	"orl-assistant/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "orl-assistant",
		BodyLimit:             1 * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          serverutils.ErrorHandler(container.Logger),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PATCH, DELETE, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())

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

// Run forwards bus events to websocket clients and serves HTTP until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	feed, err := s.container.Bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	go s.container.WebSocketHub.Run(ctx, feed)

	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	s.container.Logger.Info("SERVER", "Companion server listening", map[string]interface{}{
		"addr": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{"service": "orl-assistant"}))
	})

	c.AuthController.RegisterCallback(app)
	c.EventsHandler.RegisterRoutes(app)

	api := app.Group("/api")
	c.AuthController.RegisterRoutes(api)
	c.SessionController.RegisterRoutes(api)
	c.WorkflowController.RegisterRoutes(api, serverutils.RequireSession(c.Session))
}
