package handlers

import (
	"errors"
	"log"

	"telar/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validate is shared by all handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// respondError maps the service error taxonomy onto HTTP status codes.
// NotFound and ValidationError are deterministic input problems; Conflict
// and NotEditable tell the caller to re-fetch state before retrying.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotEditable), errors.Is(err, models.ErrConflict):
		status = fiber.StatusConflict
	default:
		log.Printf("Internal error: %v", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// parseBody binds and validates a JSON request body. It writes the 400
// response itself and reports false when the body is unusable.
func parseBody(c *fiber.Ctx, dst interface{}) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Request validation failed",
			"error":   err.Error(),
		})
		return false
	}
	return true
}
