package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/repository"
)

// Health reports 200 while the store answers a ping and 503 otherwise.
func Health(store repository.Pinger, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c, timeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"error":  "store unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
