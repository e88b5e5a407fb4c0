package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/services"
)

// CreatePatient creates a new patient
func CreatePatient(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreatePatientRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.New(apperr.InvalidInput, "Invalid request body")
		}

		p, err := svc.Records.CreatePatient(c.UserContext(), req)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// GetPatient returns a specific patient
func GetPatient(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		p, err := svc.Records.GetPatient(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

func ListPatients(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.Records.ListPatients(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}
