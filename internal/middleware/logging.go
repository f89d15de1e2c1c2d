// Package middleware provides Echo middleware for logging, metrics and
// header hygiene.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"upstream-gateway/internal/model"
)

// RequestLogger returns an Echo middleware that logs each request with slog.
// Gateway-originated failures are logged at warn level with their error code;
// upstream statuses, whatever they are, stay at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				slog.String("remote_ip", c.RealIP()),
				slog.Int64("bytes_out", res.Size),
			}

			level := slog.LevelInfo
			if code := res.Header().Get(model.HeaderGatewayError); code != "" {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("gateway_error", code))
			} else if err != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("err", err.Error()))
			}

			logger.LogAttrs(context.Background(), level, "request", attrs...)

			return err
		}
	}
}
