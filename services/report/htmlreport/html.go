// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package htmlreport assembles the per-run and consolidated HTML report
// pages. It is a templating collaborator: every number it shows was
// computed upstream, and every image it references was rendered upstream.
package htmlreport

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/engine"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const notAvailable = "N/A"

// RunPage is the data behind one run's report page.
type RunPage struct {
	Adapter       string
	Workload      string
	DurationS     float64
	ThroughputEPS float64
	HasCDF        bool
	HasSeries     bool
}

// IndexRow is one run's row in the consolidated summary table. Resource
// columns are preformatted so absent container data shows as "N/A".
type IndexRow struct {
	Adapter    string
	Workload   string
	Workers    int
	ReportLink string
	DurationS  float64
	Throughput float64
	P50MS      float64
	P99MS      float64
	ImageMB    string
	Startup    string
	CPU        string
	Memory     string
}

// ComparisonSection references the pre-rendered comparison charts for one
// worker count.
type ComparisonSection struct {
	WorkerCount int
	CDFImage    string
	SeriesImage string
}

// IndexPage is the data behind the consolidated report page.
type IndexPage struct {
	Rows         []IndexRow
	Comparisons  []ComparisonSection
	HasScaling   bool
	AxisLabel    string
	HasResources bool
	Resources    []metrics.CompositeScore
}

// Writer renders report pages from the embedded templates.
type Writer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Writer, error) {
	tmpl, err := template.New("htmlreport").Funcs(template.FuncMap{
		"fmt1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"fmt2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"fmt0": func(v float64) string { return fmt.Sprintf("%.0f", v) },
		"fmt3": func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report templates: %w", err)
	}
	return &Writer{tmpl: tmpl}, nil
}

// WriteRunPage writes one run's index.html into dir.
func (w *Writer) WriteRunPage(dir string, art engine.RunArtifacts) error {
	page := RunPage{
		Adapter:       art.Run.Adapter,
		Workload:      art.Run.Workload,
		DurationS:     art.Run.DurationS,
		ThroughputEPS: art.Run.ThroughputEPS,
		HasCDF:        art.CDF != nil,
		HasSeries:     art.Series != nil,
	}
	return w.writeFile(filepath.Join(dir, "index.html"), "run.html.tmpl", page)
}

// WriteIndex writes the consolidated index.html into dir.
func (w *Writer) WriteIndex(dir string, page IndexPage) error {
	return w.writeFile(filepath.Join(dir, "index.html"), "index.html.tmpl", page)
}

// RenderIndex renders the consolidated page to an arbitrary writer.
func (w *Writer) RenderIndex(out io.Writer, page IndexPage) error {
	if err := w.tmpl.ExecuteTemplate(out, "index.html.tmpl", page); err != nil {
		return fmt.Errorf("rendering consolidated report: %w", err)
	}
	return nil
}

func (w *Writer) writeFile(path, name string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := w.tmpl.ExecuteTemplate(f, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return nil
}

// BuildIndexPage flattens a computed report into the consolidated page
// data, applying the "N/A" fallbacks for absent container metrics.
func BuildIndexPage(report *engine.Report) IndexPage {
	page := IndexPage{
		HasScaling:   report.ThroughputScaling != nil,
		AxisLabel:    axisLabel(report.Axis),
		HasResources: report.Resources != nil,
		Resources:    report.Resources,
	}

	for _, art := range report.PerRun {
		run := art.Run
		row := IndexRow{
			Adapter:    run.Adapter,
			Workload:   run.WorkloadStem(),
			Workers:    metrics.WorkerCount(run),
			ReportLink: fmt.Sprintf("report-%s-%s/index.html", run.Adapter, run.WorkloadStem()),
			DurationS:  run.DurationS,
			Throughput: run.ThroughputEPS,
			P50MS:      run.Latency.P50MS,
			P99MS:      run.Latency.P99MS,
		}
		row.ImageMB, row.Startup, row.CPU, row.Memory = resourceColumns(run.Container)
		page.Rows = append(page.Rows, row)
	}

	for _, wc := range report.WorkerCounts() {
		page.Comparisons = append(page.Comparisons, ComparisonSection{
			WorkerCount: wc,
			CDFImage:    fmt.Sprintf("comparison_w%d_latency_cdf.png", wc),
			SeriesImage: fmt.Sprintf("comparison_w%d_throughput.png", wc),
		})
	}
	return page
}

// resourceColumns formats the container columns of one summary row.
func resourceColumns(c *store.ContainerMetrics) (imageMB, startup, cpu, mem string) {
	imageMB, startup, cpu, mem = notAvailable, notAvailable, notAvailable, notAvailable
	if c == nil {
		return
	}
	if c.ImageSizeBytes > 0 {
		imageMB = fmt.Sprintf("%.0f", c.ImageSizeBytes/(1024*1024))
	}
	if c.StartupTimeS > 0 {
		startup = fmt.Sprintf("%.1fs", c.StartupTimeS)
	}
	switch {
	case c.AvgCPUPercent > 0 && c.PeakCPUPercent > 0:
		cpu = fmt.Sprintf("%.1f%% / %.1f%%", c.AvgCPUPercent, c.PeakCPUPercent)
	case c.AvgCPUPercent > 0:
		cpu = fmt.Sprintf("%.1f%%", c.AvgCPUPercent)
	}
	switch {
	case c.AvgMemoryBytes > 0 && c.PeakMemoryBytes > 0:
		mem = fmt.Sprintf("%.0f / %.0f", c.AvgMemoryBytes/(1024*1024), c.PeakMemoryBytes/(1024*1024))
	case c.AvgMemoryBytes > 0:
		mem = fmt.Sprintf("%.0f", c.AvgMemoryBytes/(1024*1024))
	}
	return
}

func axisLabel(axis metrics.WorkerAxis) string {
	if axis == metrics.AxisReaders {
		return "Readers"
	}
	return "Writers"
}
