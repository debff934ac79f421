// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/charts"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/engine"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/htmlreport"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

func newReportCommand() *cobra.Command {
	var (
		configPath  string
		enableTrace bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the full report: charts, HTML pages, and series dumps",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := reportViper(cmd, configPath)
			if err != nil {
				return err
			}

			if enableTrace {
				shutdown, err := setupTracing(os.Stderr)
				if err != nil {
					return err
				}
				defer func() {
					if err := shutdown(context.Background()); err != nil {
						slog.Warn("trace exporter shutdown", "error", err)
					}
				}()
			}

			cfg := &metrics.Config{
				BinSizeMS:      v.GetInt("bin_size_ms"),
				SmoothingSigma: v.GetFloat64("smoothing_sigma"),
				TrimEdges:      v.GetBool("trim_edges"),
			}
			return runReport(cmd.Context(), v.GetString("raw"), v.GetString("out"), cfg, paletteFromConfig(v))
		},
	}

	cmd.Flags().String("raw", "results/raw", "path to raw results dir")
	cmd.Flags().String("out", "results/published", "output reports dir")
	cmd.Flags().Int("bin-size-ms", 50, "throughput bucket width in milliseconds")
	cmd.Flags().Float64("sigma", 2.0, "Gaussian smoothing width in buckets (0 disables)")
	cmd.Flags().Bool("no-trim", false, "keep partial warm-up/cool-down windows in scaling estimates")
	cmd.Flags().StringVar(&configPath, "config", "", "optional report config file (YAML)")
	cmd.Flags().BoolVar(&enableTrace, "trace", false, "emit engine trace spans to stderr")
	return cmd
}

// reportViper layers flag, env (BENCHREPORT_*), and optional config-file
// values for the report parameters.
func reportViper(cmd *cobra.Command, configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("BENCHREPORT")
	v.AutomaticEnv()

	for flagName, key := range map[string]string{
		"raw":         "raw",
		"out":         "out",
		"bin-size-ms": "bin_size_ms",
		"sigma":       "smoothing_sigma",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
			return nil, fmt.Errorf("binding --%s: %w", flagName, err)
		}
	}
	v.SetDefault("trim_edges", true)
	if noTrim, _ := cmd.Flags().GetBool("no-trim"); noTrim {
		v.Set("trim_edges", false)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading report config: %w", err)
		}
	}
	return v, nil
}

// paletteFromConfig builds the adapter color mapping from an optional
// "colors" section ({adapter: "#rrggbb"}), falling back to the stock
// palette for anything unlisted.
func paletteFromConfig(v *viper.Viper) charts.Palette {
	palette := charts.DefaultPalette()
	for adapter, hex := range v.GetStringMapString("colors") {
		c, err := parseHexColor(hex)
		if err != nil {
			slog.Warn("ignoring invalid color", "adapter", adapter, "value", hex, "error", err)
			continue
		}
		palette[adapter] = c
	}
	return palette
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("expected #rrggbb, got %q", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("expected #rrggbb, got %q", s)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
}

func runReport(ctx context.Context, rawDir, outDir string, cfg *metrics.Config, palette charts.Palette) error {
	loader := store.NewLoader()
	runs, err := loader.LoadAll(rawDir)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("No runs found in %s\n", rawDir)
		return nil
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	report, err := eng.Generate(ctx, runs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", outDir, err)
	}

	renderer := charts.NewRenderer(palette)
	writer, err := htmlreport.New()
	if err != nil {
		return err
	}

	if err := writeRunReports(report, renderer, writer, outDir); err != nil {
		return err
	}
	if err := writeComparisons(report, renderer, outDir); err != nil {
		return err
	}
	if err := writeScaling(report, renderer, outDir); err != nil {
		return err
	}
	if err := renderer.ResourceBars(report.Resources, outDir); err != nil {
		return err
	}
	if err := writer.WriteIndex(outDir, htmlreport.BuildIndexPage(report)); err != nil {
		return err
	}
	fmt.Printf("Consolidated report written to %s\n", filepath.Join(outDir, "index.html"))
	return nil
}

// writeRunReports writes each run's report directory: charts, a JSON dump
// of the recomputed series, and the run page.
func writeRunReports(report *engine.Report, renderer *charts.Renderer, writer *htmlreport.Writer, outDir string) error {
	for _, art := range report.PerRun {
		run := art.Run
		dir := filepath.Join(outDir, fmt.Sprintf("report-%s-%s", run.Adapter, run.WorkloadStem()))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir %s: %w", dir, err)
		}

		if art.CDF != nil {
			if err := renderer.LatencyCDF(art.CDF, "Latency CDF", filepath.Join(dir, "latency_cdf.png")); err != nil {
				return err
			}
		}
		if art.Series != nil {
			if err := renderer.Throughput(art.Series, "Throughput over time", filepath.Join(dir, "throughput.png")); err != nil {
				return err
			}
			if err := writeSeriesJSON(art.Series, filepath.Join(dir, "timeseries.json")); err != nil {
				return err
			}
		}
		if err := writer.WriteRunPage(dir, art); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", filepath.Join(dir, "index.html"))
	}
	return nil
}

// writeComparisons writes the per-worker-count comparison charts. A group
// with a single adapter still gets charts, for consistency across groups.
func writeComparisons(report *engine.Report, renderer *charts.Renderer, outDir string) error {
	axis := report.Axis
	for _, wc := range report.WorkerCounts() {
		entries := report.WorkerGroups[wc]
		title := fmt.Sprintf("Latency CDF (%d %s)", wc, axis)
		path := filepath.Join(outDir, fmt.Sprintf("comparison_w%d_latency_cdf.png", wc))
		if err := renderer.ComparisonCDF(entries, title, path); err != nil {
			return err
		}

		title = fmt.Sprintf("Throughput (%d %s)", wc, axis)
		path = filepath.Join(outDir, fmt.Sprintf("comparison_w%d_throughput.png", wc))
		if err := renderer.ComparisonThroughput(entries, title, path); err != nil {
			return err
		}
	}
	return nil
}

func writeScaling(report *engine.Report, renderer *charts.Renderer, outDir string) error {
	if report.ThroughputScaling == nil {
		return nil
	}
	err := renderer.ScalingCurves(report.ThroughputScaling, report.Axis,
		"Throughput (events/sec)", "Throughput Scaling", filepath.Join(outDir, "scaling_throughput.png"))
	if err != nil {
		return err
	}
	return renderer.ScalingCurves(report.P99Scaling, report.Axis,
		"p99 Latency (ms)", "p99 Latency Scaling", filepath.Join(outDir, "scaling_p99.png"))
}

func writeSeriesJSON(ts *metrics.TimeSeries, path string) error {
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding time series: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
