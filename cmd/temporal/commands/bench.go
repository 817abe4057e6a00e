package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/engineering87/TemporalCollections-sub001/pkg/bench"
	"github.com/engineering87/TemporalCollections-sub001/pkg/config"
	"github.com/engineering87/TemporalCollections-sub001/pkg/observability"
)

// jsonFileMode is the permission mode for exported result files.
const jsonFileMode = 0o600

// BenchCommand holds configuration and flag state for the bench command.
type BenchCommand struct {
	configPath   string
	containers   []string
	operations   int
	ringCapacity int
	priorities   int
	jsonPath     string
	noColor      bool
}

// NewBenchCommand creates the bench command.
func NewBenchCommand() *cobra.Command {
	bc := &BenchCommand{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the container benchmark workload",
		Long:  "Insert, query and prune synthetic entries across every container kind and report per-phase timings.",
		Args:  cobra.NoArgs,
		RunE:  bc.run,
	}

	cmd.Flags().StringVar(&bc.configPath, "config", "", "Config file path (default: ./config.yaml)")
	cmd.Flags().StringSliceVarP(&bc.containers, "containers", "c", nil,
		"Container kinds to benchmark (example: ordered,priority,interval; empty = all)")
	cmd.Flags().IntVar(&bc.operations, "operations", 0, "Insertions per container (0 = config value)")
	cmd.Flags().IntVar(&bc.ringCapacity, "ring-capacity", 0, "Ring buffer capacity (0 = config value)")
	cmd.Flags().IntVar(&bc.priorities, "priorities", 0, "Distinct priority levels (0 = config value)")
	cmd.Flags().StringVar(&bc.jsonPath, "json", "", "Write results as JSON to this path (input for the chart command)")
	cmd.Flags().BoolVar(&bc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (bc *BenchCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(bc.configPath)
	if err != nil {
		return err
	}

	bc.applyOverrides(cmd, cfg)

	color.NoColor = bc.noColor //nolint:reassign // intentional override of library global

	providers, err := observability.Init(telemetryConfig(cfg, observability.ModeBench))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = providers.Shutdown(shutdownCtx)
	}()

	metrics, err := observability.NewContainerMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Bench.Timeout)
	defer cancel()

	opts := bench.Options{
		Operations:         cfg.Bench.Operations,
		RingCapacity:       cfg.Bench.RingCapacity,
		Priorities:         cfg.Bench.Priorities,
		Hibernate:          cfg.Hibernation.Enabled,
		HibernateThreshold: cfg.Hibernation.Threshold,
		Metrics:            metrics,
		Logger:             providers.Logger,
	}

	start := time.Now()

	results, err := bench.Run(ctx, opts, cfg.Bench.Containers)
	if err != nil {
		return err
	}

	renderBenchTable(cmd.OutOrStdout(), results)

	if bc.jsonPath != "" {
		writeErr := writeResultsJSON(bc.jsonPath, results)
		if writeErr != nil {
			return writeErr
		}
	}

	color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "benchmark completed in %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}

// applyOverrides lets explicit flags win over the loaded configuration.
func (bc *BenchCommand) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("containers") {
		cfg.Bench.Containers = bc.containers
	}

	if cmd.Flags().Changed("operations") {
		cfg.Bench.Operations = bc.operations
	}

	if cmd.Flags().Changed("ring-capacity") {
		cfg.Bench.RingCapacity = bc.ringCapacity
	}

	if cmd.Flags().Changed("priorities") {
		cfg.Bench.Priorities = bc.priorities
	}
}

// renderBenchTable writes the per-container results as an aligned table.
func renderBenchTable(w io.Writer, results []bench.Result) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Container", "Ops", "Insert", "Inserts/s", "Query", "Prune", "Pruned", "Remaining", "Hibernate"})

	for _, res := range results {
		hibernate := "-"
		if res.HibernateTime > 0 {
			hibernate = res.HibernateTime.Round(time.Microsecond).String()
		}

		tbl.AppendRow(table.Row{
			res.Container,
			humanize.Comma(int64(res.Operations)),
			res.InsertTime.Round(time.Microsecond),
			humanize.CommafWithDigits(res.InsertsPerSecond(), 0),
			res.QueryTime.Round(time.Microsecond),
			res.PruneTime.Round(time.Microsecond),
			humanize.Comma(int64(res.Pruned)),
			humanize.Comma(int64(res.Remaining)),
			hibernate,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d containers", len(results))})
	tbl.Render()
}

func writeResultsJSON(path string, results []bench.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), jsonFileMode)
	if err != nil {
		return fmt.Errorf("write results %s: %w", path, err)
	}

	return nil
}
