// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

func newRankCommand() *cobra.Command {
	var rawDir string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank adapters by composite resource efficiency",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := store.NewLoader().LoadAll(rawDir)
			if err != nil {
				return err
			}
			scores := metrics.RankResources(runs)
			if len(scores) == 0 {
				fmt.Println("No container metrics found")
				return nil
			}
			return writeRankTable(cmd.OutOrStdout(), scores)
		},
	}

	cmd.Flags().StringVar(&rawDir, "raw", "results/raw", "path to raw results dir")
	return cmd
}

func writeRankTable(out io.Writer, scores []metrics.CompositeScore) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tADAPTER\tSCORE\tIMAGE (MB)\tSTARTUP (s)\tPEAK CPU (%)\tPEAK MEM (MB)")
	for i, s := range scores {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.1f\t%.2f\t%.1f\t%.1f\n",
			i+1, s.Adapter, s.Score,
			s.Usage.ImageSizeMB, s.Usage.StartupTimeS,
			s.Usage.PeakCPUPercent, s.Usage.PeakMemoryMB)
	}
	return tw.Flush()
}
