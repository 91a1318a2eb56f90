package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/apperror"
	"storefront/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Status    int                   `json:"status"`
	Error     string                `json:"error"`
	Message   string                `json:"message"`
	Path      string                `json:"path"`
	Errors    []apperror.FieldError `json:"errors,omitempty"`
}

// ErrorHandler renders typed errors with their status. Anything untyped is a
// 500 whose details stay in the log.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		resp := ErrorResponse{
			Timestamp: time.Now().UTC(),
			Path:      c.Path(),
		}

		var fiberErr *fiber.Error
		if appErr, ok := apperror.As(err); ok && appErr.Kind != apperror.KindInternal {
			resp.Status = appErr.StatusCode
			resp.Message = appErr.Message
			resp.Errors = appErr.Fields
		} else if errors.As(err, &fiberErr) {
			resp.Status = fiberErr.Code
			resp.Message = fiberErr.Message
		} else {
			logger.For(c.UserContext(), log).Error("Unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			resp.Status = fiber.StatusInternalServerError
			resp.Message = "An unexpected error occurred"
		}
		resp.Error = http.StatusText(resp.Status)

		return c.Status(resp.Status).JSON(resp)
	}
}

func badRequest(message string, err error) error {
	return apperror.Validation(message).WithError(err)
}
