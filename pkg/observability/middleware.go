package observability

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// httpStatusServerError is the lowest status code recorded as a span error.
const httpStatusServerError = 500

// responseRecorder wraps [http.ResponseWriter] to observe the status code
// and body size without changing what the handler sends.
type responseRecorder struct {
	http.ResponseWriter

	status    int
	bodyBytes int64
}

// WriteHeader records the first status code; later calls keep delegating so
// net/http can emit its superfluous-WriteHeader warning.
func (rr *responseRecorder) WriteHeader(code int) {
	if rr.status == 0 {
		rr.status = code
	}

	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(buf []byte) (int, error) {
	// An implicit 200 when the handler writes without WriteHeader.
	if rr.status == 0 {
		rr.status = http.StatusOK
	}

	n, err := rr.ResponseWriter.Write(buf)
	rr.bodyBytes += int64(n)

	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}

	return n, nil
}

// HTTPMiddleware returns an [http.Handler] that opens one server span per
// request, named "METHOD /path". The serve mode's scrape and liveness
// endpoints run behind this wrapper, so scrape latency correlates with the
// container operation spans in the same trace.
func HTTPMiddleware(tracer trace.Tracer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		// Honor W3C traceparent/tracestate/baggage from the caller.
		parentCtx := otel.GetTextMapPropagator().Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))

		ctx, span := tracer.Start(parentCtx, hr.Method+" "+hr.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(hr.Method),
				attribute.String("http.target", hr.URL.Path),
			),
		)
		defer span.End()

		rec := &responseRecorder{ResponseWriter: rw}
		next.ServeHTTP(rec, hr.WithContext(ctx))

		span.SetAttributes(
			semconv.HTTPResponseStatusCode(rec.status),
			attribute.Int64("http.response.body.size", rec.bodyBytes),
		)

		if rec.status >= httpStatusServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}
