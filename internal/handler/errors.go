package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gymsnap/gymsnap/internal/domain"
)

// respondError maps domain errors onto HTTP responses. Every failure body
// carries an "error" message and, where useful, a "details" field.
func respondError(c *fiber.Ctx, err error) error {
	if domain.IsValidation(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Action is not allowed in the current session state",
		})
	case errors.Is(err, domain.ErrStaleCapture):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Capture was superseded by a newer one",
		})
	case errors.Is(err, domain.ErrWorkoutInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A workout is already in progress",
		})
	case errors.Is(err, domain.ErrNoActiveWorkout):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active workout",
		})
	case errors.Is(err, domain.ErrWorkoutNotFound),
		errors.Is(err, domain.ErrExerciseNotFound),
		errors.Is(err, domain.ErrSetNotFound),
		errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, domain.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid id",
		})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	case errors.Is(err, domain.ErrIdentifyUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Exercise identification is unavailable",
			"details": err.Error(),
		})
	case errors.Is(err, domain.ErrIdentifyParse):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Exercise identification returned an unusable answer",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal server error",
		"details": err.Error(),
	})
}
