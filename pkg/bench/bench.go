// Package bench drives synthetic workloads against every temporal container
// kind and reports per-container timings. The CLI bench command renders the
// results as a table; the chart command renders them as an HTML page.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/engineering87/TemporalCollections-sub001/pkg/interval"
	"github.com/engineering87/TemporalCollections-sub001/pkg/observability"
	"github.com/engineering87/TemporalCollections-sub001/pkg/ordered"
	"github.com/engineering87/TemporalCollections-sub001/pkg/priority"
	"github.com/engineering87/TemporalCollections-sub001/pkg/timed"
	"github.com/engineering87/TemporalCollections-sub001/pkg/unordered"
)

// Container names accepted by Run.
const (
	ContainerOrdered  = "ordered"
	ContainerPriority = "priority"
	ContainerInterval = "interval"
	ContainerQueue    = "queue"
	ContainerStack    = "stack"
	ContainerRing     = "ring"
	ContainerSet      = "set"
	ContainerMap      = "map"
	ContainerMultiMap = "multimap"
)

// Sentinel errors. Options are validated before any container is built, so
// an invalid workload never mutates anything.
var (
	// ErrUnknownContainer is returned when a requested container name is
	// not in the benchmark registry.
	ErrUnknownContainer = errors.New("unknown container")

	// ErrInvalidOperations is returned for a non-positive operation count.
	ErrInvalidOperations = errors.New("operations must be positive")

	// ErrInvalidPriorities is returned for a non-positive priority level
	// count.
	ErrInvalidPriorities = errors.New("priority levels must be positive")
)

// benchIntervalWidth is the fixed width of each synthetic interval.
const benchIntervalWidth = 100

// multiMapKeySpace bounds the number of distinct multimap keys so the
// workload exercises per-key slice growth, not just map growth.
const multiMapKeySpace = 1024

// Options configures a benchmark run.
type Options struct {
	// Operations is the number of insertions per container.
	Operations int

	// RingCapacity is the capacity of the benchmarked ring buffer.
	RingCapacity int

	// Priorities is the number of distinct priority levels in the
	// priority-queue workload.
	Priorities int

	// Hibernate enables a hibernate/boot cycle on the interval tree after
	// the insert phase, when the tree is at least HibernateThreshold nodes.
	Hibernate          bool
	HibernateThreshold int

	// Metrics, when non-nil, records per-container instruments.
	Metrics *observability.ContainerMetrics

	// Logger, when non-nil, logs per-container progress.
	Logger *slog.Logger
}

// Result holds the measured timings for one container.
type Result struct {
	Container     string        `json:"container"`
	Operations    int           `json:"operations"`
	InsertTime    time.Duration `json:"insert_time"`
	QueryTime     time.Duration `json:"query_time"`
	PruneTime     time.Duration `json:"prune_time"`
	HibernateTime time.Duration `json:"hibernate_time,omitempty"`
	Pruned        int           `json:"pruned"`
	Remaining     int           `json:"remaining"`
}

// InsertsPerSecond reports the insert throughput.
func (r Result) InsertsPerSecond() float64 {
	if r.InsertTime <= 0 {
		return 0
	}

	return float64(r.Operations) / r.InsertTime.Seconds()
}

// target pairs a container's query contract with its kind-specific insert.
type target struct {
	name string
	// insert stamps the i-th synthetic entry into the container.
	insert func(i int)
	// hibernate runs a hibernate/boot cycle, nil when unsupported.
	hibernate func()
	index     timed.Index[int]
}

// Names returns the container names in canonical benchmark order.
func Names() []string {
	return []string{
		ContainerOrdered,
		ContainerPriority,
		ContainerInterval,
		ContainerQueue,
		ContainerStack,
		ContainerRing,
		ContainerSet,
		ContainerMap,
		ContainerMultiMap,
	}
}

// Run executes the workload against the named containers and returns one
// Result per container, in the given order. Empty names means all containers.
func Run(ctx context.Context, opts Options, names []string) ([]Result, error) {
	if opts.Operations <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOperations, opts.Operations)
	}

	if opts.Priorities <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriorities, opts.Priorities)
	}

	if len(names) == 0 {
		names = Names()
	}

	targets, err := buildTargets(opts)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(names))

	for _, name := range names {
		tgt, ok := targets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, name)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("benchmark interrupted: %w", ctxErr)
		}

		res, runErr := runTarget(ctx, opts, tgt)
		if runErr != nil {
			return nil, runErr
		}

		if logger := observability.ContainerLogger(opts.Logger, res.Container); logger != nil {
			logger.InfoContext(ctx, "container benchmarked",
				"operations", res.Operations,
				"insert_time", res.InsertTime,
				"remaining", res.Remaining)
		}

		results = append(results, res)
	}

	return results, nil
}

func runTarget(ctx context.Context, opts Options, tgt target) (Result, error) {
	res := Result{Container: tgt.name, Operations: opts.Operations}

	start := time.Now()
	for i := range opts.Operations {
		tgt.insert(i)
	}

	res.InsertTime = time.Since(start)

	if opts.Metrics != nil {
		opts.Metrics.RecordInsert(ctx, tgt.name, int64(opts.Operations))
	}

	if tgt.hibernate != nil && opts.Hibernate && tgt.index.Len() >= opts.HibernateThreshold {
		hStart := time.Now()
		tgt.hibernate()
		res.HibernateTime = time.Since(hStart)
	}

	queryErr := runQueries(ctx, opts, tgt, &res)
	if queryErr != nil {
		return Result{}, queryErr
	}

	pruneErr := runPrune(ctx, opts, tgt, &res)
	if pruneErr != nil {
		return Result{}, pruneErr
	}

	res.Remaining = tgt.index.Len()

	return res, nil
}

// runQueries exercises the query contract over the container's full span.
func runQueries(ctx context.Context, opts Options, tgt target, res *Result) error {
	earliest, ok := tgt.index.Earliest()
	if !ok {
		return nil
	}

	latest, _ := tgt.index.Latest()
	mid := midpoint(earliest.TS, latest.TS)

	start := time.Now()

	_, err := tgt.index.RangeQuery(earliest.TS, latest.TS)
	if err != nil {
		return fmt.Errorf("bench %s range query: %w", tgt.name, err)
	}

	tgt.index.CountSince(mid)
	tgt.index.Nearest(mid)
	tgt.index.StrictlyAfter(mid)
	tgt.index.Span()

	res.QueryTime = time.Since(start)

	if opts.Metrics != nil {
		opts.Metrics.RecordQuery(ctx, tgt.name, "range_query", res.QueryTime, false)
	}

	return nil
}

// runPrune drops the older half of the container by timestamp.
func runPrune(ctx context.Context, opts Options, tgt target, res *Result) error {
	earliest, ok := tgt.index.Earliest()
	if !ok {
		return nil
	}

	latest, _ := tgt.index.Latest()
	mid := midpoint(earliest.TS, latest.TS)

	start := time.Now()
	res.Pruned = tgt.index.PruneOlderThan(mid)
	res.PruneTime = time.Since(start)

	if opts.Metrics != nil {
		opts.Metrics.RecordPrune(ctx, tgt.name, int64(res.Pruned))
	}

	return nil
}

func buildTargets(opts Options) (map[string]target, error) {
	ring, err := unordered.NewRing[int](opts.RingCapacity)
	if err != nil {
		return nil, fmt.Errorf("bench ring: %w", err)
	}

	orderedIx := ordered.New[int]()
	priorityQ := priority.New[int, int]()
	tree := interval.New[int]()
	queue := unordered.NewQueue[int]()
	stack := unordered.NewStack[int]()
	set := unordered.NewSet[int]()
	kv := unordered.NewMap[int, int]()
	mm := unordered.NewMultiMap[int, int]()

	intervalBase := timed.FromTime(time.Now())

	targets := map[string]target{
		ContainerOrdered: {
			name:   ContainerOrdered,
			insert: func(i int) { orderedIx.Insert(i) },
			index:  orderedIx,
		},
		ContainerPriority: {
			name:   ContainerPriority,
			insert: func(i int) { priorityQ.Enqueue(i, i%opts.Priorities) },
			index:  priorityQ,
		},
		ContainerInterval: {
			name: ContainerInterval,
			insert: func(i int) {
				start := intervalBase + timed.Timestamp(i)
				// Explicit interval keys; end is validated >= start.
				_ = tree.Insert(start, start+benchIntervalWidth, i)
			},
			hibernate: func() {
				tree.Hibernate()
				tree.Boot()
			},
			index: tree,
		},
		ContainerQueue: {
			name:   ContainerQueue,
			insert: func(i int) { queue.Enqueue(i) },
			index:  queue,
		},
		ContainerStack: {
			name:   ContainerStack,
			insert: func(i int) { stack.Push(i) },
			index:  stack,
		},
		ContainerRing: {
			name:   ContainerRing,
			insert: func(i int) { ring.Add(i) },
			index:  ring,
		},
		ContainerSet: {
			name:   ContainerSet,
			insert: func(i int) { set.Add(i) },
			index:  set,
		},
		ContainerMap: {
			name:   ContainerMap,
			insert: func(i int) { kv.Put(i, i) },
			index:  kv,
		},
		ContainerMultiMap: {
			name:   ContainerMultiMap,
			insert: func(i int) { mm.Add(i%multiMapKeySpace, i) },
			index:  mm,
		},
	}

	return targets, nil
}

func midpoint(lo, hi timed.Timestamp) timed.Timestamp {
	return lo + (hi-lo)/2
}
