package helpers

import (
	"github.com/gofiber/fiber/v2"
)

// Failure is the structured failure envelope used by the reward endpoints.
// Business failures stay HTTP 200 so the relay's retry logic stays simple.
func Failure(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// ServerError is reserved for persistence failures, the only fatal class.
func ServerError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
