package middleware

import (
	"time"

	"aid-portal/internal/ports"

	"github.com/labstack/echo/v4"
)

func RequestLogger(logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			args := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route_pattern", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(started).String(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if actor, ok := ActorFrom(c); ok && actor.Role != "" {
				args = append(args, "actor_role", actor.Role)
			}
			logger.Info(c.Request().Context(), "http request", args...)
			return err
		}
	}
}
