package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"

	"github.com/engineering87/TemporalCollections-sub001/pkg/observability"
)

func TestNewContainerMetrics(t *testing.T) {
	t.Parallel()

	meter := noopmetric.NewMeterProvider().Meter("test")

	cm, err := observability.NewContainerMetrics(meter)
	require.NoError(t, err)
	require.NotNil(t, cm)

	// Recording against noop instruments must not panic.
	ctx := context.Background()
	cm.RecordInsert(ctx, "ordered", 10)
	cm.RecordQuery(ctx, "ordered", "range_query", 5*time.Microsecond, false)
	cm.RecordQuery(ctx, "interval", "overlap", time.Millisecond, true)
	cm.RecordPrune(ctx, "ordered", 3)
}

func TestContainerMetricsNilReceiver(t *testing.T) {
	t.Parallel()

	var cm *observability.ContainerMetrics

	// All recorders are no-ops on nil, so optional wiring stays simple.
	ctx := context.Background()
	cm.RecordInsert(ctx, "ordered", 1)
	cm.RecordQuery(ctx, "ordered", "nearest", time.Microsecond, false)
	cm.RecordPrune(ctx, "ordered", 1)
}

func TestPrometheusHandler(t *testing.T) {
	t.Parallel()

	handler, provider, err := observability.PrometheusHandler()
	require.NoError(t, err)
	require.NotNil(t, handler)
	require.NotNil(t, provider)

	// Instruments created from the provider feed the scrape endpoint.
	cm, err := observability.NewContainerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	cm.RecordInsert(context.Background(), "ring", 1)
}
