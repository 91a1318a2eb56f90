package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/logger"
)

// RequestIDKey is the fiber.Locals key holding the request id.
const RequestIDKey = "request_id"

// RequestLogger tags every request with an X-Request-ID and logs its outcome.
// Handler errors are rendered here through the app's ErrorHandler so the
// logged status is the one the client sees.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, requestID)
		c.Locals(RequestIDKey, requestID)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), requestID))

		if err := c.Next(); err != nil {
			if renderErr := c.App().Config().ErrorHandler(c, err); renderErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("Request completed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("Request completed", fields...)
		default:
			log.Info("Request completed", fields...)
		}
		return nil
	}
}
