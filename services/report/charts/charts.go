// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package charts renders the engine's computed series as PNG charts. It is
// a rendering collaborator: it consumes finished values from the metrics
// engine and owns no statistics of its own.
package charts

import (
	"fmt"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
)

// Renderer draws report charts with an injected adapter color mapping.
type Renderer struct {
	palette Palette
}

// NewRenderer creates a chart renderer. A nil palette uses DefaultPalette.
func NewRenderer(palette Palette) *Renderer {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Renderer{palette: palette}
}

// LatencyCDF renders one run's latency CDF with a logarithmic latency axis.
// The engine's 1e-3 ms clamp guarantees the log scale is well-defined.
func (r *Renderer) LatencyCDF(cdf []metrics.CDFPoint, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Latency (ms) [log]"
	p.Y.Label.Text = "Percentile (%)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(cdfXYs(cdf))
	if err != nil {
		return fmt.Errorf("building CDF line: %w", err)
	}
	line.Color = fallbackCycle[0]
	line.Width = vg.Points(1.5)
	p.Add(line)

	return save(p, 6, 4, path)
}

// Throughput renders one run's raw and smoothed throughput series.
func (r *Renderer) Throughput(ts *metrics.TimeSeries, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Events/sec"
	p.Add(plotter.NewGrid())

	raw, err := plotter.NewLine(seriesXYs(ts.TimeS, ts.EPS))
	if err != nil {
		return fmt.Errorf("building raw series line: %w", err)
	}
	raw.Color = fallbackCycle[0]
	raw.Width = vg.Points(0.75)

	smoothed, err := plotter.NewLine(seriesXYs(ts.TimeS, ts.EPSSmoothed))
	if err != nil {
		return fmt.Errorf("building smoothed series line: %w", err)
	}
	smoothed.Color = fallbackCycle[1]
	smoothed.Width = vg.Points(2)

	p.Add(raw, smoothed)
	p.Legend.Add("raw", raw)
	p.Legend.Add("smoothed", smoothed)
	p.Legend.Top = true

	return save(p, 6, 4, path)
}

// ComparisonCDF renders one latency CDF line per adapter on shared axes.
// Entries with no CDF are skipped.
func (r *Renderer) ComparisonCDF(entries []metrics.AdapterSeries, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Latency (ms) [log]"
	p.Y.Label.Text = "Percentile (%)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	for i, entry := range entries {
		if entry.CDF == nil {
			continue
		}
		line, err := plotter.NewLine(cdfXYs(entry.CDF))
		if err != nil {
			return fmt.Errorf("building CDF line for %s: %w", entry.Adapter, err)
		}
		line.Color = r.palette.Color(entry.Adapter, i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(entry.Adapter, line)
	}
	p.Legend.Top = true

	return save(p, 8, 5, path)
}

// ComparisonThroughput renders one smoothed throughput line per adapter on
// shared axes. Entries with no series are skipped.
func (r *Renderer) ComparisonThroughput(entries []metrics.AdapterSeries, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Events/sec"
	p.Add(plotter.NewGrid())

	for i, entry := range entries {
		if entry.Series == nil {
			continue
		}
		line, err := plotter.NewLine(seriesXYs(entry.Series.TimeS, entry.Series.EPSSmoothed))
		if err != nil {
			return fmt.Errorf("building series line for %s: %w", entry.Adapter, err)
		}
		line.Color = r.palette.Color(entry.Adapter, i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(entry.Adapter, line)
	}
	p.Legend.Top = true

	return save(p, 8, 5, path)
}

// ScalingCurves renders one line-with-markers per adapter of a metric
// against worker count.
func (r *Renderer) ScalingCurves(curves map[string][]metrics.ScalingPoint, axis metrics.WorkerAxis, yLabel, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = axisLabel(axis)
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	adapters := make([]string, 0, len(curves))
	for adapter := range curves {
		adapters = append(adapters, adapter)
	}
	sort.Strings(adapters)

	for i, adapter := range adapters {
		xys := make(plotter.XYs, len(curves[adapter]))
		for j, pt := range curves[adapter] {
			xys[j].X = float64(pt.WorkerCount)
			xys[j].Y = pt.Value
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("building scaling curve for %s: %w", adapter, err)
		}
		c := r.palette.Color(adapter, i)
		line.Color = c
		line.Width = vg.Points(1.5)
		points.Color = c
		p.Add(line, points)
		p.Legend.Add(adapter, line, points)
	}
	p.Legend.Top = true

	return save(p, 8, 5, path)
}

// ResourceBars renders the four container-metric bar charts (image size,
// startup time, peak CPU, peak memory) into dir. No files are written when
// scores is empty.
func (r *Renderer) ResourceBars(scores []metrics.CompositeScore, dir string) error {
	if len(scores) == 0 {
		return nil
	}

	adapters := make([]string, len(scores))
	for i, s := range scores {
		adapters[i] = s.Adapter
	}
	sort.Strings(adapters)

	byAdapter := make(map[string]metrics.ResourceUsage, len(scores))
	for _, s := range scores {
		byAdapter[s.Adapter] = s.Usage
	}

	panels := []struct {
		file  string
		label string
		value func(metrics.ResourceUsage) float64
	}{
		{"container_image_size.png", "Image Size (MB)", func(u metrics.ResourceUsage) float64 { return u.ImageSizeMB }},
		{"container_startup_time.png", "Startup Time (s)", func(u metrics.ResourceUsage) float64 { return u.StartupTimeS }},
		{"container_peak_cpu.png", "Peak CPU (%)", func(u metrics.ResourceUsage) float64 { return u.PeakCPUPercent }},
		{"container_peak_memory.png", "Peak Memory (MB)", func(u metrics.ResourceUsage) float64 { return u.PeakMemoryMB }},
	}

	for _, panel := range panels {
		values := make(plotter.Values, len(adapters))
		for i, adapter := range adapters {
			values[i] = panel.value(byAdapter[adapter])
		}

		p := plot.New()
		p.Title.Text = panel.label
		p.Y.Label.Text = panel.label

		bars, err := plotter.NewBarChart(values, vg.Points(30))
		if err != nil {
			return fmt.Errorf("building %s bars: %w", panel.file, err)
		}
		bars.Color = fallbackCycle[0]
		p.Add(bars)
		p.NominalX(adapters...)

		if err := save(p, 7, 4, filepath.Join(dir, panel.file)); err != nil {
			return err
		}
	}
	return nil
}

func axisLabel(axis metrics.WorkerAxis) string {
	if axis == metrics.AxisReaders {
		return "Readers"
	}
	return "Writers"
}

func cdfXYs(cdf []metrics.CDFPoint) plotter.XYs {
	xys := make(plotter.XYs, len(cdf))
	for i, pt := range cdf {
		xys[i].X = pt.LatencyMS
		xys[i].Y = pt.Percentile
	}
	return xys
}

func seriesXYs(xs, ys []float64) plotter.XYs {
	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i].X = xs[i]
		xys[i].Y = ys[i]
	}
	return xys
}

func save(p *plot.Plot, wInches, hInches float64, path string) error {
	if err := p.Save(vg.Length(wInches)*vg.Inch, vg.Length(hInches)*vg.Inch, path); err != nil {
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	return nil
}
