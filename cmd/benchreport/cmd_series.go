// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

func newSeriesCommand() *cobra.Command {
	var (
		rawDir  string
		runName string
		binMS   int
		sigma   float64
	)

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print one run's throughput time series as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := store.NewLoader().LoadRun(filepath.Join(rawDir, runName))
			if err != nil {
				return err
			}

			cfg := metrics.DefaultConfig()
			cfg.BinSizeMS = binMS
			cfg.SmoothingSigma = sigma
			ts, err := metrics.ThroughputSeries(run.Samples, cfg)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ts)
		},
	}

	cmd.Flags().StringVar(&rawDir, "raw", "results/raw", "path to raw results dir")
	cmd.Flags().StringVar(&runName, "run", "", "run directory name under the raw dir")
	cmd.Flags().IntVar(&binMS, "bin-size-ms", 50, "throughput bucket width in milliseconds")
	cmd.Flags().Float64Var(&sigma, "sigma", 2.0, "Gaussian smoothing width in buckets (0 disables)")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}
