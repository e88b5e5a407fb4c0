package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/repository"
	"github.com/psiai/psiai-backend/internal/services"
)

// CreateSession uploads a session recording and runs the full processing
// pipeline before responding.
func CreateSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		psychologistID, err := parseUUID(c.FormValue("psychologist_id"), "psychologist_id")
		if err != nil {
			return err
		}
		patientID, err := parseUUID(c.FormValue("patient_id"), "patient_id")
		if err != nil {
			return err
		}

		header, err := c.FormFile("audio")
		if err != nil {
			return apperr.New(apperr.InvalidInput, "audio file is required")
		}
		file, err := header.Open()
		if err != nil {
			return apperr.Wrap(apperr.InvalidInput, err, "could not read audio file")
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			return apperr.Wrap(apperr.InvalidInput, err, "could not read audio file")
		}
		if len(audio) == 0 {
			return apperr.New(apperr.InvalidInput, "audio file is empty")
		}

		session, err := svc.Pipeline.Process(c.UserContext(), services.ProcessInput{
			PsychologistID: psychologistID,
			PatientID:      patientID,
			Audio:          audio,
			Filename:       header.Filename,
		})
		if err != nil {
			return err
		}
		return c.JSON(session)
	}
}

// GetSession returns a specific session
func GetSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		session, err := svc.Records.GetSession(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(session)
	}
}

// ListSessions returns sessions newest first, optionally filtered by
// psychologist_id and patient_id.
func ListSessions(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter repository.SessionFilter
		var err error
		if filter.PsychologistID, err = optionalUUID(c, "psychologist_id"); err != nil {
			return err
		}
		if filter.PatientID, err = optionalUUID(c, "patient_id"); err != nil {
			return err
		}

		sessions, err := svc.Records.ListSessions(c.UserContext(), filter)
		if err != nil {
			return err
		}
		return c.JSON(sessions)
	}
}

// SubmitAnswers replaces the answers to a session's reflective questions
func SubmitAnswers(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		var req models.SubmitAnswersRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.New(apperr.InvalidInput, "Invalid request body")
		}
		if req.Answers == nil {
			return apperr.New(apperr.InvalidInput, "answers is required")
		}

		session, err := svc.Pipeline.SubmitAnswers(c.UserContext(), id, req.Answers)
		if err != nil {
			return err
		}
		return c.JSON(session)
	}
}

// ConcludeSession generates the closing synthesis for a session
func ConcludeSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return err
		}

		session, err := svc.Pipeline.Conclude(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(session)
	}
}
