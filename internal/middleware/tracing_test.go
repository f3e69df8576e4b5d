package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lifewood/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedApp(t *testing.T) (*fiber.App, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prevTracer, prevProp := observability.Tracer, otel.GetTextMapPropagator()
	observability.Tracer = tp.Tracer("test")
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		observability.Tracer = prevTracer
		otel.SetTextMapPropagator(prevProp)
	})

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/applicants/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "0" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "boom"})
		}
		return c.JSON(fiber.Map{"id": c.Params("id")})
	})
	return app, rec
}

func TestTracingMiddleware_NamesSpanAfterRoute(t *testing.T) {
	app, rec := tracedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/applicants/7", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/applicants/:id", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), resp.Header.Get("X-Trace-ID"))
}

func TestTracingMiddleware_ContinuesCallerTrace(t *testing.T) {
	app, rec := tracedApp(t)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodGet, "/api/applicants/7", nil)
	req.Header.Set("Traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, traceID, spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent().SpanID().String())
}

func TestTracingMiddleware_ServerErrorMarksSpan(t *testing.T) {
	app, rec := tracedApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/applicants/0", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
