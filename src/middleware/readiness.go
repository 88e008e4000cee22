package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Readiness rejects trading requests while the books are still being
// recovered from the event log. Accepting a command before recovery
// completes would assign sequence numbers that the replayed history is
// about to claim.
func Readiness(ready func() bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// edge case: health check always available
		if c.Path() == "/health" {
			return c.Next()
		}

		if !ready() {
			log.Warn().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("ip", c.IP()).
				Msg("Request rejected: recovery in progress")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "Service unavailable",
				"message": "The exchange is recovering its books. Please try again shortly.",
				"code":    503,
			})
		}

		return c.Next()
	}
}
