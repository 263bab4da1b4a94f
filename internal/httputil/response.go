package httputil

import (
	"github.com/gofiber/fiber/v3"
)

// Success sends a 200 JSON response with status "ok", merging extra key/value fields into the top-level object. This
// mirrors original_source/handlers/api_handlers.py's flat {"status": "ok", ...} response shape rather than a nested
// data envelope.
func Success(c fiber.Ctx, fields fiber.Map) error {
	body := fiber.Map{"status": "ok"}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(body)
}

// Fail sends a JSON error response with the given HTTP status and message, mirroring the original's
// {"status": "error", "error": "..."} shape.
func Fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
