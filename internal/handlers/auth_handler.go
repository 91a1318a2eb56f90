package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/dto"
	"storefront/internal/services"
	"storefront/internal/validation"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validation.Validator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.New(),
	}
}

// RegisterRoutes registers the authentication routes. loginGuard runs before
// the login handler, typically a rate limiter.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, loginGuard ...fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", append(loginGuard, h.HandleLogin)...)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(token)
}
