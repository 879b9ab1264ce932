package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gymsnap/gymsnap/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest is the login request payload
type LoginRequest struct {
	FirebaseToken string `json:"firebaseToken"`
}

// Login verifies the Firebase email-link token and issues an app session token
// POST /v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.FirebaseToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "firebaseToken is required",
		})
	}

	result, err := h.authService.LoginOrRegister(c.Context(), req.FirebaseToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Authentication failed",
			"details": err.Error(),
		})
	}

	status := fiber.StatusOK
	if result.IsNewUser {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(fiber.Map{
		"token": result.Token,
		"user": fiber.Map{
			"id":    result.User.ID,
			"email": result.User.Email,
			"name":  result.User.Name,
		},
		"isNewUser": result.IsNewUser,
	})
}
