package handler

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/metrics"
	"github.com/sumire/overflow/internal/service"
)

const contextKeyUserID = "user_id"

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	}
}

// Metrics records request duration by method, route and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			metrics.HTTPRequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(c.Response().Status),
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// JWTAuth validates the Bearer token and injects the user ID into echo context.
func JWTAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return domain.ErrUnauthorized
			}

			userID, err := auth.ValidateToken(parts[1])
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(contextKeyUserID, userID)
			return next(c)
		}
	}
}

// OptionalJWTAuth injects the user ID when a valid Bearer token is
// present but lets anonymous requests through. Used on read endpoints
// that personalize their response for signed-in viewers.
func OptionalJWTAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header != "" {
				parts := strings.SplitN(header, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					if userID, err := auth.ValidateToken(parts[1]); err == nil {
						c.Set(contextKeyUserID, userID)
					}
				}
			}
			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user ID from echo context.
func GetUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(contextKeyUserID).(int64)
	return id, ok
}
