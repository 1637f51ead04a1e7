package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/commerce-core/pkg/logger"
)

// StructuredLoggingMiddleware logs one completion line per request,
// attributed to the backend service and surface the gateway routed to.
func StructuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()
		service, surface := ClassifyPath(c.Path())

		traceID := ""
		if span := trace.SpanFromContext(c.UserContext()); span.SpanContext().IsValid() {
			traceID = span.SpanContext().TraceID().String()
		}

		logEvent := logger.WithContext(c.UserContext()).Info()
		if statusCode >= 500 {
			logEvent = logger.WithContext(c.UserContext()).Error()
		} else if statusCode >= 400 {
			logEvent = logger.WithContext(c.UserContext()).Warn()
		}

		logEvent = logEvent.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("ip", c.IP()).
			Str("request_id", c.Get("X-Request-Id"))

		if service != "" {
			logEvent = logEvent.
				Str("service", service).
				Str("surface", string(surface))
		}
		if actor := c.Locals("username"); actor != nil {
			logEvent = logEvent.Str("actor", actor.(string))
		}
		if cache := string(c.Response().Header.Peek("X-Cache")); cache != "" {
			logEvent = logEvent.Str("cache", cache)
		}
		if traceID != "" {
			logEvent = logEvent.Str("trace_id", traceID)
		}
		if err != nil {
			logEvent = logEvent.Err(err)
		}

		logEvent.Msg("Gateway request")

		return err
	}
}
