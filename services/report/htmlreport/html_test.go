// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package htmlreport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/engine"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

func testReport() *engine.Report {
	run1 := &store.Run{
		Name:          "umadb-append_heavy-w2",
		Adapter:       "umadb",
		Workload:      "workloads/append_heavy.yaml",
		Writers:       2,
		DurationS:     10.5,
		ThroughputEPS: 950.25,
		Latency:       store.LatencySummary{P50MS: 1.1, P99MS: 4.4},
		Container: &store.ContainerMetrics{
			ImageSizeBytes:  150 * 1024 * 1024,
			StartupTimeS:    1.5,
			PeakCPUPercent:  80,
			AvgCPUPercent:   40,
			PeakMemoryBytes: 512 * 1024 * 1024,
			AvgMemoryBytes:  256 * 1024 * 1024,
		},
	}
	run2 := &store.Run{
		Name:          "kurrentdb-append_heavy-w2",
		Adapter:       "kurrentdb",
		Workload:      "workloads/append_heavy.yaml",
		Writers:       2,
		DurationS:     10.2,
		ThroughputEPS: 840,
	}

	return &engine.Report{
		PerRun: []engine.RunArtifacts{
			{Run: run1, CDF: []metrics.CDFPoint{{LatencyMS: 1, Percentile: 0}}, Series: &metrics.TimeSeries{}},
			{Run: run2},
		},
		WorkerGroups: map[int][]metrics.AdapterSeries{
			2: {{Adapter: "umadb", Run: run1}, {Adapter: "kurrentdb", Run: run2}},
		},
		Axis: metrics.AxisWriters,
		Resources: []metrics.CompositeScore{
			{Adapter: "umadb", Score: 0.42, Usage: metrics.ResourceUsage{
				Adapter: "umadb", ImageSizeMB: 150, StartupTimeS: 1.5, PeakCPUPercent: 80, PeakMemoryMB: 512,
			}},
		},
	}
}

func TestBuildIndexPage(t *testing.T) {
	page := BuildIndexPage(testReport())

	require.Len(t, page.Rows, 2)
	row := page.Rows[0]
	assert.Equal(t, "umadb", row.Adapter)
	assert.Equal(t, "append_heavy", row.Workload)
	assert.Equal(t, 2, row.Workers)
	assert.Equal(t, "report-umadb-append_heavy/index.html", row.ReportLink)
	assert.Equal(t, "150", row.ImageMB)
	assert.Equal(t, "1.5s", row.Startup)
	assert.Equal(t, "40.0% / 80.0%", row.CPU)
	assert.Equal(t, "256 / 512", row.Memory)

	// Run without container metrics gets the N/A fallbacks.
	assert.Equal(t, "N/A", page.Rows[1].ImageMB)
	assert.Equal(t, "N/A", page.Rows[1].CPU)

	require.Len(t, page.Comparisons, 1)
	assert.Equal(t, 2, page.Comparisons[0].WorkerCount)
	assert.Equal(t, "comparison_w2_latency_cdf.png", page.Comparisons[0].CDFImage)

	assert.False(t, page.HasScaling, "single worker count has no scaling curves")
	assert.True(t, page.HasResources)
	assert.Equal(t, "Writers", page.AxisLabel)
}

func TestRenderIndex(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.RenderIndex(&buf, BuildIndexPage(testReport())))
	html := buf.String()

	for _, want := range []string{
		"umadb",
		"kurrentdb",
		"report-umadb-append_heavy/index.html",
		"comparison_w2_latency_cdf.png",
		"comparison_w2_throughput.png",
		"N/A",
		"0.420", // composite score
	} {
		assert.Contains(t, html, want)
	}
	assert.NotContains(t, html, "scaling_throughput.png", "no scaling section without curves")
}

func TestRenderIndexWithScaling(t *testing.T) {
	report := testReport()
	report.ThroughputScaling = map[string][]metrics.ScalingPoint{
		"umadb": {{WorkerCount: 1, Value: 100}, {WorkerCount: 2, Value: 190}},
	}

	w, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, w.RenderIndex(&buf, BuildIndexPage(report)))

	assert.Contains(t, buf.String(), "scaling_throughput.png")
	assert.Contains(t, buf.String(), "scaling_p99.png")
}

func TestWriteRunPage(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	art := testReport().PerRun[0]
	require.NoError(t, w.WriteRunPage(dir, art))

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "umadb")
	assert.Contains(t, html, "latency_cdf.png")
	assert.Contains(t, html, "throughput.png")
}

func TestWriteRunPageWithoutArtifacts(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	art := testReport().PerRun[1] // no CDF, no series
	require.NoError(t, w.WriteRunPage(dir, art))

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "latency_cdf.png")
	assert.NotContains(t, string(data), "src='throughput.png'")
}

func TestWriteIndex(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, w.WriteIndex(dir, BuildIndexPage(testReport())))

	_, err = os.Stat(filepath.Join(dir, "index.html"))
	assert.NoError(t, err)
}

func TestResourceColumns(t *testing.T) {
	tests := []struct {
		name      string
		container *store.ContainerMetrics
		wantImage string
		wantCPU   string
		wantMem   string
	}{
		{name: "nil", container: nil, wantImage: "N/A", wantCPU: "N/A", wantMem: "N/A"},
		{
			name:      "avg only",
			container: &store.ContainerMetrics{AvgCPUPercent: 12.5, AvgMemoryBytes: 64 * 1024 * 1024},
			wantImage: "N/A",
			wantCPU:   "12.5%",
			wantMem:   "64",
		},
		{
			name: "avg and peak",
			container: &store.ContainerMetrics{
				AvgCPUPercent: 10, PeakCPUPercent: 20,
				AvgMemoryBytes: 100 * 1024 * 1024, PeakMemoryBytes: 200 * 1024 * 1024,
			},
			wantImage: "N/A",
			wantCPU:   "10.0% / 20.0%",
			wantMem:   "100 / 200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image, _, cpu, mem := resourceColumns(tt.container)
			assert.Equal(t, tt.wantImage, image)
			assert.Equal(t, tt.wantCPU, cpu)
			assert.Equal(t, tt.wantMem, mem)
		})
	}
}
