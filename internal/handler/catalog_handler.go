package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gymsnap/gymsnap/internal/domain"
)

// CatalogHandler serves the exercise catalog used for manual picks when the
// identification result is wrong or Unknown
type CatalogHandler struct {
	catalogRepo domain.CatalogRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogRepo domain.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalogRepo: catalogRepo}
}

// List returns catalog exercises, optionally filtered by name substring
// GET /v1/catalog?name=press
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	exercises, err := h.catalogRepo.List(c.Context(), c.Query("name"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load exercise catalog",
		})
	}

	if exercises == nil {
		exercises = []*domain.CatalogExercise{}
	}

	return c.JSON(fiber.Map{
		"exercises": exercises,
		"count":     len(exercises),
	})
}
