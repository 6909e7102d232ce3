package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Instrument returns a middleware that wraps the handler in OpenTelemetry
// HTTP instrumentation (server spans and request metrics) using the given
// telemetry providers.
func Instrument(serviceName string, m *app.Telemetry) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// TraceRequestID records the request ID on the active server span so traces
// can be correlated with logs.
func TraceRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := RequestIDFromContext(r.Context()); id != "" {
				span := trace.SpanFromContext(r.Context())
				span.SetAttributes(attribute.String("http.request_id", id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
