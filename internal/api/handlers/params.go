package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/psiai/psiai-backend/internal/apperr"
)

// parseID reads a UUID path parameter.
func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseUUID(c.Params(name), name)
}

func parseUUID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperr.InvalidInputf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.InvalidInputf("%s must be a valid UUID", field)
	}
	return id, nil
}

// optionalUUID parses a query filter, returning nil when it is absent.
func optionalUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := parseUUID(raw, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
