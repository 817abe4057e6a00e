package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/engineering87/TemporalCollections-sub001/pkg/observability"
)

func TestFilteringTracerProvider_SuppressesHotPathTracer(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	base := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	fp := observability.NewFilteringTracerProvider(base)

	_, span := fp.Tracer("temporal.clock").Start(context.Background(), "allocate")
	span.End()

	assert.Empty(t, exporter.GetSpans(), "hot-path tracer spans are dropped")
}

func TestFilteringTracerProvider_SuppressesHotPathSpan(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	base := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	fp := observability.NewFilteringTracerProvider(base)

	tracer := fp.Tracer("temporal")

	_, hot := tracer.Start(context.Background(), "temporal.container.insert")
	hot.End()

	_, cold := tracer.Start(context.Background(), "temporal.container.range_query")
	cold.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "temporal.container.range_query", spans[0].Name)
}
