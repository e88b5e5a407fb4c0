package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/auth"
)

// APIKeyRequired rejects requests whose X-API-Key header is missing (401)
// or differs from secret (403).
func APIKeyRequired(secret string, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get(auth.HeaderName)
		if presented == "" {
			logger.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"ip":     c.IP(),
			}).Warn("Request without API key")
			return apperr.New(apperr.Unauthenticated, "API key is required")
		}

		if !auth.Matches(presented, secret) {
			logger.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"ip":     c.IP(),
			}).Warn("Request with invalid API key")
			return apperr.New(apperr.Forbidden, "invalid API key")
		}

		return c.Next()
	}
}
