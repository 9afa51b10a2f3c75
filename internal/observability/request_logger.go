package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs every request and records it in metrics. Register it
// before the error handling middleware so the rendered status is visible.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		route := RouteKey(c)
		metrics.RecordRequest(route, c.Method(), status, duration)

		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", duration),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

// UnmatchedRoute is the metrics key for requests that hit no registered route.
const UnmatchedRoute = "<unmatched>"

// methodUse is the method fiber assigns to middleware routes.
const methodUse = "USE"

// RouteKey returns the registered route template serving c, so metric keys
// stay bounded by the route table rather than by request paths.
func RouteKey(c *fiber.Ctx) string {
	route := c.Route()
	if route == nil || route.Method == methodUse || len(route.Handlers) == 0 {
		return UnmatchedRoute
	}
	return route.Path
}
