package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/observability"
)

const requestIDHeader = "x-request-id"

// RequestID ensures every request carries a request_id, sourcing it from
// the x-request-id header when the caller sent one, and attaches a
// request-scoped logger to the context. The id is echoed on the response
// so clients can correlate.
func RequestID(base logging.Logger) fiber.Handler {
	if base == nil {
		base = logging.Noop()
	}
	return func(c fiber.Ctx) error {
		ctx := c.Context()
		if incoming := c.Get(requestIDHeader); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}

		ctx, reqLog := logging.WithRequestLogger(ctx, base.With(
			logging.String("method", c.Method()),
			logging.String("path", c.Path()),
		))
		ctx = logging.ContextWithLogger(ctx, reqLog)
		c.SetContext(ctx)

		c.Set(requestIDHeader, logging.RequestIDFromContext(ctx))
		return c.Next()
	}
}

// Trace opens one server span per request, named after the registered
// route pattern so traces group by endpoint rather than by raw path.
func Trace(route string) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, span := observability.StartSpan(c.Context(), c.Method()+" "+route,
			attribute.String("http.route", route),
			attribute.String("http.method", c.Method()),
			attribute.String("url.path", c.Path()),
		)
		defer span.End()
		c.SetContext(ctx)

		err := c.Next()

		code := c.Response().StatusCode()
		if err != nil {
			code = http.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("http.status_code", code))
		return err
	}
}
