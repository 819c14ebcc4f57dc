package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-inventory-mt/internal/authz"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	loggerKey    = "logger"
)

// RequestID tags each request with an id, reusing one sent by the client,
// and stores a logger carrying it.
func RequestID(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals(requestIDKey, requestID)
		c.Locals(loggerKey, log.With(zap.String("request_id", requestID)))
		return c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or a no-op logger outside
// RequestID.
func LoggerFrom(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

func zapCaller(c *authz.Caller) []zap.Field {
	fields := []zap.Field{
		zap.String("user_id", c.UserID.String()),
		zap.String("role", string(c.Role)),
	}
	if c.CompanyID != nil {
		fields = append(fields, zap.String("company_id", c.CompanyID.String()))
	}
	return fields
}
