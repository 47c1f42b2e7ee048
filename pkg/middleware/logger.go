// pkg/middleware/logger.go

package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ticket-system/pkg/contextkeys"
)

const HeaderRequestID = echo.HeaderXRequestID

// InjectLogger добавляет в контекст запроса request_id и логгер с этим полем.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := context.WithValue(c.Request().Context(), contextkeys.RequestIDKey, requestID)
			ctx = context.WithValue(ctx, contextkeys.LoggerKey, reqLogger)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Set("logger", reqLogger)
			return next(c)
		}
	}
}
