// Package main provides the entry point for the temporal CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/engineering87/TemporalCollections-sub001/cmd/temporal/commands"
	"github.com/engineering87/TemporalCollections-sub001/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "temporal",
		Short: "TemporalCollections - time-indexed in-memory containers",
		Long: `Temporal provides benchmarking and inspection tools for the
time-indexed container library.

Commands:
  bench     Run the container benchmark workload
  chart     Render benchmark results as an HTML chart page
  serve     Run the metrics and health endpoint server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewBenchCommand())
	rootCmd.AddCommand(commands.NewChartCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "temporal %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
