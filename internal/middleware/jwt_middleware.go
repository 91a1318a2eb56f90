package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/logger"
)

// PrincipalKey is the fiber.Locals key holding the authenticated *auth.Principal.
const PrincipalKey = "principal"

// TokenValidator turns a bearer token into the caller it identifies.
// *services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Principal, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// principal is stored both in Locals and in the request's user context, which
// is what services read.
func AuthRequired(validator TokenValidator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.Unauthorized("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return apperror.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			logger.For(c.UserContext(), log).Debug("JWT validation failed", zap.Error(err))
			return apperror.Unauthorized("Invalid or expired token").WithError(err)
		}

		c.Locals(PrincipalKey, principal)
		c.SetUserContext(auth.WithPrincipal(c.UserContext(), principal))
		return c.Next()
	}
}

// RequireRoles rejects callers holding none of roles. It must run after
// AuthRequired.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.Require(c.UserContext(), roles...); err != nil {
			return err
		}
		return c.Next()
	}
}
