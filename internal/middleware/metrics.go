package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"upstream-gateway/internal/metrics"
	"upstream-gateway/internal/model"
)

// MetricsMiddleware returns an Echo middleware that records Prometheus metrics
// for each inbound request. Each request is labelled with the source of its
// status: responses relayed on the forwarding route under mountPath count as
// upstream, and everything the gateway answered itself counts as gateway.
func MetricsMiddleware(m *metrics.Metrics, mountPath string) echo.MiddlewareFunc {
	forwardRoute := mountPath + "/*"

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()

			err := next(c)

			// An *echo.HTTPError is written later by Echo's error handler,
			// so the response status is not final yet.
			statusCode := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				statusCode = he.Code
			}

			labels := []string{
				metrics.NormalizeMethod(c.Request().Method),
				strconv.Itoa(statusCode),
				m.NormalizePath(c.Request().URL.Path),
				responseSource(c, err, forwardRoute),
			}

			m.RequestsTotal.WithLabelValues(labels...).Inc()
			m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func responseSource(c echo.Context, err error, forwardRoute string) string {
	if err == nil &&
		c.Path() == forwardRoute &&
		c.Response().Header().Get(model.HeaderGatewayError) == "" {
		return metrics.SourceUpstream
	}
	return metrics.SourceGateway
}
