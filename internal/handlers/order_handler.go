package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/dto"
	"storefront/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. Every order route needs a token.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	order, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandleCreateOrder places an order for the caller. Only product ids and
// quantities are read from the body; prices come from the catalog.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req dto.OrderDTO
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body", err)
	}

	order, err := h.service.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return err
	}

	c.Location(fmt.Sprintf("/orders/%d", order.ID))
	return c.Status(fiber.StatusCreated).JSON(order)
}
