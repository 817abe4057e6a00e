package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricInsertsTotal    = "temporal.inserts.total"
	metricQueriesTotal    = "temporal.queries.total"
	metricQueryDuration   = "temporal.query.duration.seconds"
	metricPrunedTotal     = "temporal.pruned.entries.total"
	metricEntriesInflight = "temporal.container.entries"

	attrContainer = "container"
	attrOp        = "op"
	attrStatus    = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1µs to 10s: container operations are
// in-memory, so most land in the microsecond buckets, while benchmark-scale
// range scans and hibernation cycles can reach whole seconds.
var durationBucketBoundaries = []float64{
	0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// ContainerMetrics holds the OTel instruments for container operations.
type ContainerMetrics struct {
	insertsTotal  metric.Int64Counter
	queriesTotal  metric.Int64Counter
	queryDuration metric.Float64Histogram
	prunedTotal   metric.Int64Counter
	entries       metric.Int64UpDownCounter
}

// NewContainerMetrics creates container metric instruments from the given
// meter.
func NewContainerMetrics(mt metric.Meter) (*ContainerMetrics, error) {
	inserts, err := mt.Int64Counter(metricInsertsTotal,
		metric.WithDescription("Total entries inserted per container kind"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInsertsTotal, err)
	}

	queries, err := mt.Int64Counter(metricQueriesTotal,
		metric.WithDescription("Total queries per container kind and operation"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueriesTotal, err)
	}

	queryDur, err := mt.Float64Histogram(metricQueryDuration,
		metric.WithDescription("Query duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueryDuration, err)
	}

	pruned, err := mt.Int64Counter(metricPrunedTotal,
		metric.WithDescription("Total entries removed by prune operations"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPrunedTotal, err)
	}

	entries, err := mt.Int64UpDownCounter(metricEntriesInflight,
		metric.WithDescription("Current number of retained entries"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEntriesInflight, err)
	}

	return &ContainerMetrics{
		insertsTotal:  inserts,
		queriesTotal:  queries,
		queryDuration: queryDur,
		prunedTotal:   pruned,
		entries:       entries,
	}, nil
}

// RecordInsert records n inserted entries for the given container kind.
// Safe to call on a nil receiver (no-op).
func (cm *ContainerMetrics) RecordInsert(ctx context.Context, container string, n int64) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrContainer, container))
	cm.insertsTotal.Add(ctx, n, attrs)
	cm.entries.Add(ctx, n, attrs)
}

// RecordQuery records a completed query with its operation, outcome, and
// duration. Safe to call on a nil receiver (no-op).
func (cm *ContainerMetrics) RecordQuery(ctx context.Context, container, op string, duration time.Duration, failed bool) {
	if cm == nil {
		return
	}

	status := statusOK
	if failed {
		status = statusError
	}

	attrs := metric.WithAttributes(
		attribute.String(attrContainer, container),
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	cm.queriesTotal.Add(ctx, 1, attrs)
	cm.queryDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPrune records removed entries for the given container kind.
// Safe to call on a nil receiver (no-op).
func (cm *ContainerMetrics) RecordPrune(ctx context.Context, container string, removed int64) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrContainer, container))
	cm.prunedTotal.Add(ctx, removed, attrs)
	cm.entries.Add(ctx, -removed, attrs)
}
