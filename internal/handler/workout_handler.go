package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gymsnap/gymsnap/internal/domain"
	"github.com/gymsnap/gymsnap/internal/middleware"
	"github.com/gymsnap/gymsnap/internal/service"
)

// WorkoutHandler serves workout history
type WorkoutHandler struct {
	workouts *service.WorkoutService
}

// NewWorkoutHandler creates a new workout handler
func NewWorkoutHandler(workouts *service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts}
}

// List returns the authenticated user's workouts, most recent first
// GET /v1/me/workouts?limit=20
func (h *WorkoutHandler) List(c *fiber.Ctx) error {
	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be between 1 and 100",
			})
		}
		limit = parsed
	}

	workouts, err := h.workouts.ListWorkouts(c.Context(), middleware.GetUserID(c), limit)
	if err != nil {
		return respondError(c, err)
	}
	if workouts == nil {
		workouts = []*domain.Workout{}
	}

	return c.JSON(fiber.Map{
		"workouts": workouts,
		"count":    len(workouts),
	})
}

// Get returns one workout with all exercises and sets
// GET /v1/me/workouts/:id
func (h *WorkoutHandler) Get(c *fiber.Ctx) error {
	tree, err := h.workouts.GetWorkout(c.Context(), middleware.GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tree)
}
