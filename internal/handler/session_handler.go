package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gymsnap/gymsnap/internal/domain"
	"github.com/gymsnap/gymsnap/internal/middleware"
	"github.com/gymsnap/gymsnap/internal/service"
)

// SessionHandler exposes the workout-entry state machine over HTTP. Every
// route operates on the authenticated user's own session.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CaptureRequest carries one camera frame for identification
type CaptureRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MediaType   string `json:"mediaType"`
}

// ConfirmRequest names the exercise to log, either the accepted
// identification or a manual catalog pick
type ConfirmRequest struct {
	Name           string `json:"name"`
	Equipment      string `json:"equipment"`
	MuscleGroup    string `json:"muscleGroup"`
	IdentifiedByAI bool   `json:"identifiedByAI"`
}

// EndRequest optionally attaches free-text notes to the finished workout
type EndRequest struct {
	Notes string `json:"notes"`
}

// AddSetRequest is one weighted set
type AddSetRequest struct {
	ExerciseID string   `json:"exerciseId"`
	Weight     float64  `json:"weight"`
	Reps       int      `json:"reps"`
	WeightUnit string   `json:"weightUnit"`
	RPE        *float64 `json:"rpe"`
	Notes      string   `json:"notes"`
}

// Start begins or resumes a workout session
// POST /v1/me/session/start
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	snapshot, err := h.sessions.Start(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// Capture submits a camera frame for exercise identification
// POST /v1/me/session/capture
func (h *SessionHandler) Capture(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	snapshot, err := h.sessions.Capture(c.Context(), middleware.GetUserID(c), req.ImageBase64, req.MediaType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// Retake discards the pending identification and returns to the camera
// POST /v1/me/session/retake
func (h *SessionHandler) Retake(c *fiber.Ctx) error {
	snapshot, err := h.sessions.Retake(middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// Confirm logs the pending exercise and moves to set logging
// POST /v1/me/session/confirm
func (h *SessionHandler) Confirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}

	snapshot, err := h.sessions.Confirm(c.Context(), middleware.GetUserID(c), req.Name, req.Equipment, req.MuscleGroup, req.IdentifiedByAI)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// AddSet logs one set against the current exercise
// POST /v1/me/session/sets
func (h *SessionHandler) AddSet(c *fiber.Ctx) error {
	var req AddSetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	set, err := h.sessions.AddSet(c.Context(), middleware.GetUserID(c), req.ExerciseID,
		req.Weight, req.Reps, domain.WeightUnit(req.WeightUnit), req.RPE, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(set)
}

// DeleteSet removes one logged set
// DELETE /v1/me/session/sets/:setId
func (h *SessionHandler) DeleteSet(c *fiber.Ctx) error {
	setID := c.Params("setId")
	if setID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "setId is required",
		})
	}

	if err := h.sessions.DeleteSet(c.Context(), middleware.GetUserID(c), setID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// NextExercise finishes the current exercise and returns to the camera
// POST /v1/me/session/next
func (h *SessionHandler) NextExercise(c *fiber.Ctx) error {
	snapshot, err := h.sessions.NextExercise(middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// End closes the active workout, with optional notes in the body
// POST /v1/me/session/end
func (h *SessionHandler) End(c *fiber.Ctx) error {
	var req EndRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	if err := h.sessions.End(c.Context(), middleware.GetUserID(c), req.Notes); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Workout ended"})
}

// Cancel backs out of an empty session without logging anything
// POST /v1/me/session/cancel
func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	snapshot, err := h.sessions.Cancel(middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

// Snapshot returns the current session view, rehydrating from storage when
// the process holds no state for the user
// GET /v1/me/session
func (h *SessionHandler) Snapshot(c *fiber.Ctx) error {
	snapshot, err := h.sessions.Snapshot(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}
