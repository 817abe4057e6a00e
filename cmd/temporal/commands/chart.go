package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/engineering87/TemporalCollections-sub001/pkg/bench"
)

// ErrNoResults is returned when the input file holds no benchmark results.
var ErrNoResults = errors.New("no benchmark results in input")

// ChartCommand holds flag state for the chart command.
type ChartCommand struct {
	inputPath  string
	outputPath string
}

// NewChartCommand creates the chart command.
func NewChartCommand() *cobra.Command {
	cc := &ChartCommand{}

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render benchmark results as an HTML chart page",
		Long:  "Read the JSON results written by 'bench --json' and render throughput and phase-duration charts.",
		Args:  cobra.NoArgs,
		RunE:  cc.run,
	}

	cmd.Flags().StringVarP(&cc.inputPath, "input", "i", "bench.json", "Benchmark results JSON path")
	cmd.Flags().StringVarP(&cc.outputPath, "output", "o", "bench.html", "Output HTML path")

	return cmd
}

func (cc *ChartCommand) run(cmd *cobra.Command, _ []string) error {
	results, err := readResults(cc.inputPath)
	if err != nil {
		return err
	}

	out, err := os.Create(cc.outputPath)
	if err != nil {
		return fmt.Errorf("create output %s: %w", cc.outputPath, err)
	}
	defer out.Close()

	page := components.NewPage()
	page.PageTitle = "Temporal Benchmark"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(throughputChart(results), phaseChart(results))

	renderErr := page.Render(out)
	if renderErr != nil {
		return fmt.Errorf("render chart page: %w", renderErr)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "chart written to %s\n", cc.outputPath)

	return nil
}

func readResults(path string) ([]bench.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results %s: %w", path, err)
	}

	var results []bench.Result

	unmarshalErr := json.Unmarshal(data, &results)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode results %s: %w", path, unmarshalErr)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, path)
	}

	return results, nil
}

// throughputChart builds a bar chart of insert throughput per container.
func throughputChart(results []bench.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Insert Throughput", Subtitle: "inserts per second"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10%"}),
	)

	labels := make([]string, len(results))
	data := make([]opts.BarData, len(results))

	for i, res := range results {
		labels[i] = res.Container
		data[i] = opts.BarData{Value: res.InsertsPerSecond()}
	}

	bar.SetXAxis(labels)
	bar.AddSeries("inserts/s", data)

	return bar
}

// phaseChart builds a grouped bar chart of per-phase durations in
// milliseconds.
func phaseChart(results []bench.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Phase Durations", Subtitle: "milliseconds"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10%"}),
	)

	labels := make([]string, len(results))
	insert := make([]opts.BarData, len(results))
	query := make([]opts.BarData, len(results))
	prune := make([]opts.BarData, len(results))

	for i, res := range results {
		labels[i] = res.Container
		insert[i] = opts.BarData{Value: float64(res.InsertTime.Microseconds()) / 1000.0}
		query[i] = opts.BarData{Value: float64(res.QueryTime.Microseconds()) / 1000.0}
		prune[i] = opts.BarData{Value: float64(res.PruneTime.Microseconds()) / 1000.0}
	}

	bar.SetXAxis(labels)
	bar.AddSeries("insert", insert)
	bar.AddSeries("query", query)
	bar.AddSeries("prune", prune)

	return bar
}
