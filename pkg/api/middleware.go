package api

import (
	"log/slog"
	"time"

	echo "github.com/labstack/echo/v5"
)

// requestLogger is a minimal structured-logging middleware: a plain
// echo.MiddlewareFunc closure, no external logging middleware package.
func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			log.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}

// recoverMiddleware turns a panicking handler into a 500 response instead
// of crashing the process; no error escapes an HTTP handler.
func recoverMiddleware(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("api: recovered from panic", "panic", r, "path", c.Request().URL.Path)
					err = echo.NewHTTPError(500, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
