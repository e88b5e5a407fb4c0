package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/psiai/psiai-backend/internal/api/handlers"
	"github.com/psiai/psiai-backend/internal/api/middleware"
	"github.com/psiai/psiai-backend/internal/services"
)

// RouteConfig carries the settings the routes need from configuration.
type RouteConfig struct {
	APIKey           string
	SessionRateLimit int
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services, cfg RouteConfig, logger *logrus.Logger) {
	// Public
	app.Get("/", handlers.Root())
	app.Get("/health", handlers.Health())
	app.Get("/docs", handlers.Docs(app))

	// Everything below requires X-API-Key
	requireKey := middleware.APIKeyRequired(cfg.APIKey, logger)

	psychologists := app.Group("/psychologists", requireKey)
	psychologists.Post("", handlers.CreatePsychologist(svc))
	psychologists.Get("", handlers.ListPsychologists(svc))
	psychologists.Get("/:id", handlers.GetPsychologist(svc))

	patients := app.Group("/patients", requireKey)
	patients.Post("", handlers.CreatePatient(svc))
	patients.Get("", handlers.ListPatients(svc))
	patients.Get("/:id", handlers.GetPatient(svc))

	sessions := app.Group("/sessions", requireKey)
	sessions.Post("",
		middleware.SessionUploadRateLimit(cfg.SessionRateLimit, time.Minute),
		handlers.CreateSession(svc))
	sessions.Get("", handlers.ListSessions(svc))
	sessions.Get("/:id", handlers.GetSession(svc))
	sessions.Patch("/:id/answers", handlers.SubmitAnswers(svc))
	sessions.Post("/:id/conclusion", handlers.ConcludeSession(svc))
}
