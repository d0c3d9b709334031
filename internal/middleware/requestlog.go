package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request. It runs inside Session so the
// uid of the signed-in provider is known.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}
			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if id, ok := SessionStore(c).Current(); ok {
				attrs = append(attrs, "uid", id.UID)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		}
	}
}

// Timeout bounds the request context, and with it every backend call a
// handler makes.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// SecurityHeaders sets the response headers echo's Secure middleware does
// not cover.
func SecurityHeaders(mapsEnabled bool) echo.MiddlewareFunc {
	script := "script-src 'self' 'unsafe-inline'"
	img := "img-src 'self' data: https:"
	connect := "connect-src 'self'"
	if mapsEnabled {
		script += " https://maps.googleapis.com"
		connect += " https://maps.googleapis.com"
	}
	csp := "default-src 'self'; " + script + "; style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
		"font-src https://fonts.gstatic.com; " + img + "; " + connect
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			return next(c)
		}
	}
}
