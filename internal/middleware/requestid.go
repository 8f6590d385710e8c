package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/pkg/logger"
	"go.uber.org/zap"
)

// CorrelationHeader is propagated from request to response so callers can
// match the two; every log line for the request carries the same id.
const CorrelationHeader = "X-Correlation-ID"

// CorrelationIDKey is the echo context key holding the correlation id
const CorrelationIDKey = "correlation_id"

// CorrelationMiddleware reuses the caller-supplied correlation id or generates
// a fresh one, sets it on the response, and binds a request-scoped logger
func CorrelationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		correlationID := c.Request().Header.Get(CorrelationHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Set(CorrelationIDKey, correlationID)
		c.Response().Header().Set(CorrelationHeader, correlationID)

		// All downstream stages and the handler log through this logger
		ctxLogger := logger.GetLogger().With(zap.String("correlation_id", correlationID))
		logger.WithContext(c, ctxLogger)

		return next(c)
	}
}

// GetCorrelationID retrieves the correlation id from the echo context
func GetCorrelationID(c echo.Context) string {
	if id, ok := c.Get(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}
