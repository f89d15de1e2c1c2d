package middleware

import (
	"github.com/labstack/echo/v4"

	"upstream-gateway/internal/httpheader"
)

// StripHopByHop returns an Echo middleware that removes connection-scoped
// headers from the inbound request before any handler sees it.
func StripHopByHop() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpheader.StripHopByHop(c.Request().Header)
			return next(c)
		}
	}
}
