// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command benchreport turns raw benchmark telemetry into comparative
// performance reports: per-run latency/throughput charts, cross-adapter
// comparisons, scaling curves, a container resource ranking, and the HTML
// pages that tie them together.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "benchreport",
		Short: "Generate comparative reports from raw benchmark results",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newReportCommand())
	root.AddCommand(newRankCommand())
	root.AddCommand(newSeriesCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
