package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/services"
)

// CreatePsychologist creates a new psychologist
func CreatePsychologist(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreatePsychologistRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.New(apperr.InvalidInput, "Invalid request body")
		}

		p, err := svc.Records.CreatePsychologist(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// GetPsychologist returns a specific psychologist
func GetPsychologist(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		p, err := svc.Records.GetPsychologist(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// ListPsychologists returns all psychologists, newest first
func ListPsychologists(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.Records.ListPsychologists(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}
