package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/psiai/psiai-backend/internal/apperr"
)

// ErrorHandler renders every error as {"error", "category", "code"}.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			code     int
			category apperr.Category
		)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			category = categoryForStatus(fe.Code)
		} else {
			category = apperr.CategoryOf(err)
			code = apperr.HTTPStatus(category)
		}

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   code,
			"category": category,
		})
		if code >= fiber.StatusInternalServerError {
			entry.WithError(err).Error("Request failed")
		} else {
			entry.Debug(err.Error())
		}

		return c.Status(code).JSON(fiber.Map{
			"error":    err.Error(),
			"category": category,
			"code":     code,
		})
	}
}

func categoryForStatus(code int) apperr.Category {
	switch code {
	case fiber.StatusUnauthorized:
		return apperr.Unauthenticated
	case fiber.StatusForbidden:
		return apperr.Forbidden
	case fiber.StatusNotFound:
		return apperr.NotFound
	case fiber.StatusConflict:
		return apperr.InvalidState
	case fiber.StatusUnprocessableEntity:
		return apperr.LengthMismatch
	}
	if code >= fiber.StatusInternalServerError {
		return apperr.UpstreamFailure
	}
	return apperr.InvalidInput
}
