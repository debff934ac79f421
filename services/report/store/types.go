// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"path"
	"strings"
)

// Sample is a single timestamped operation outcome.
//
// Description:
//
//	One Sample is recorded per attempted operation. Failed operations
//	(OK == false) carry no meaningful latency and are excluded from
//	latency and throughput computations downstream.
type Sample struct {
	// TMS is the wall-clock timestamp in milliseconds since the Unix epoch.
	TMS int64 `json:"t_ms"`

	// Op names the operation ("append", "read", ...). May be empty in
	// older recordings.
	Op string `json:"op,omitempty"`

	// OK reports whether the operation succeeded.
	OK bool `json:"ok"`

	// LatencyUS is the operation latency in microseconds.
	LatencyUS float64 `json:"latency_us"`
}

// LatencySummary holds the producer's precomputed latency percentiles in
// milliseconds.
type LatencySummary struct {
	P50MS  float64 `json:"p50_ms"`
	P95MS  float64 `json:"p95_ms"`
	P99MS  float64 `json:"p99_ms"`
	P999MS float64 `json:"p999_ms"`
}

// ContainerMetrics holds resource usage recorded for the adapter's container
// during a run. All fields are optional on the wire; absent values are zero.
type ContainerMetrics struct {
	ImageSizeBytes  float64 `json:"image_size_bytes"`
	StartupTimeS    float64 `json:"startup_time_s"`
	PeakCPUPercent  float64 `json:"peak_cpu_percent"`
	PeakMemoryBytes float64 `json:"peak_memory_bytes"`
	AvgCPUPercent   float64 `json:"avg_cpu_percent"`
	AvgMemoryBytes  float64 `json:"avg_memory_bytes"`
}

// Run is one benchmark execution: ordered event samples plus run-level
// summary metadata for one adapter/workload/worker-count combination.
//
// Description:
//
//	Run is the unit of aggregation. It is a pure value object: the store
//	package attaches no behavior beyond naming helpers, and nothing in the
//	engine mutates a Run after it is loaded.
//
// Thread Safety: Safe for concurrent read access after loading.
type Run struct {
	// Name is the run directory name, used for report paths.
	Name string

	// Adapter identifies the store adapter under test.
	Adapter string

	// Workload identifies the workload definition. May be a file path;
	// use WorkloadStem for display and directory names.
	Workload string

	// Writers is the concurrent writer count. At most one of Writers and
	// Readers is nonzero in recorded data.
	Writers int

	// Readers is the concurrent reader count.
	Readers int

	// EventsWritten and EventsRead are producer-side totals.
	EventsWritten uint64
	EventsRead    uint64

	// DurationS is the measured run duration in seconds.
	DurationS float64

	// ThroughputEPS is the producer's precomputed events/sec summary value.
	// It is independent of any recomputation from Samples.
	ThroughputEPS float64

	// Latency holds the producer's precomputed percentiles.
	Latency LatencySummary

	// Container holds resource metrics, if the adapter ran in a container.
	Container *ContainerMetrics

	// Samples is the ordered sample stream. Samples are recorded in
	// non-decreasing TMS order, but consumers must key on TMS rather than
	// position and must not fail on out-of-order input.
	Samples []Sample
}

// WorkloadStem returns the workload identifier stripped of any directory
// prefix and file extension, for use in report names.
//
// Example:
//
//	run.Workload = "workloads/append_heavy.yaml"
//	run.WorkloadStem() // "append_heavy"
func (r *Run) WorkloadStem() string {
	base := path.Base(strings.ReplaceAll(r.Workload, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// HasContainerData reports whether this run contributes to resource
// ranking. A run counts only if it recorded an image size or a peak CPU
// figure; partial container blocks without either are treated as absent.
func (r *Run) HasContainerData() bool {
	if r.Container == nil {
		return false
	}
	return r.Container.ImageSizeBytes > 0 || r.Container.PeakCPUPercent > 0
}
