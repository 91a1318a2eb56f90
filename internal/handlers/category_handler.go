package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type CategoryHandler struct {
	service *services.CategoryService
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleGetCategories)
}

func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}
