package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/auth"
	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/pagination"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/validation"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validation.Validator
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service, validate: validation.New()}
}

// RegisterRoutes registers the product routes. Reads are public, writes need
// an administrator token.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleSearchProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	admin := []fiber.Handler{authRequired, middleware.RequireRoles(auth.RoleAdmin)}
	productRoutes.Post("/", append(admin, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", append(admin, h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", append(admin, h.HandleDeleteProduct)...)
}

// HandleGetProductByID returns one product with its categories.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	product, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleSearchProducts pages through products whose name contains ?name=.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	page, err := pageable(c, repositories.ProductSortProperties...)
	if err != nil {
		return err
	}
	result, err := h.service.SearchByProductName(c.UserContext(), c.Query("name"), page)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleCreateProduct creates a product and points Location at it.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req dto.ProductDTO
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}
	product, err := h.service.Insert(c.UserContext(), req)
	if err != nil {
		return err
	}
	c.Location(fmt.Sprintf("/products/%d", product.ID))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites a product, replacing its categories.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ProductDTO
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}
	product, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product no order references.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pathID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("Invalid id '%s'", raw), err)
	}
	return id, nil
}

func pageable(c *fiber.Ctx, allowed ...string) (pagination.Pageable, error) {
	var sorts []string
	for _, s := range c.Context().QueryArgs().PeekMulti("sort") {
		sorts = append(sorts, string(s))
	}
	page, err := pagination.Parse(c.Query("page"), c.Query("size"), sorts, allowed...)
	if err != nil {
		return page, badRequest(err.Error(), err)
	}
	return page, nil
}
