package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"

	localsLogger    = "logger"
	localsRequestID = "requestID"
)

// RequestContext tags every request with an ID (taken from X-Request-ID when
// it is a valid UUID) and stores a logger carrying that ID in the context.
func RequestContext(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDHeader, requestID)
		c.Locals(localsRequestID, requestID)
		c.Locals(localsLogger, logger.With(zap.String("request_id", requestID)))

		return c.Next()
	}
}

// Logger returns the request-scoped logger, or fallback outside RequestContext.
func Logger(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Locals(localsLogger).(*zap.Logger); ok {
		return l
	}
	return fallback
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsRequestID).(string)
	return id
}
