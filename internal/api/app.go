package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/psiai/psiai-backend/internal/api/handlers"
	"github.com/psiai/psiai-backend/internal/config"
	"github.com/psiai/psiai-backend/internal/services"
)

// NewApp builds the fiber application with middleware and routes.
func NewApp(cfg *config.Config, svc *services.Services, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      handlers.ServiceName,
		ErrorHandler: ErrorHandler(log),
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: log.Out,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
		AllowMethods: "GET, POST, PATCH, OPTIONS",
	}))

	SetupRoutes(app, svc, RouteConfig{
		APIKey:           cfg.Auth.APIKey,
		SessionRateLimit: cfg.Server.SessionRateLimit,
	}, log)

	return app
}
