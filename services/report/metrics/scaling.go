// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

// WorkerAxis names the concurrency dimension a scaling study varies.
type WorkerAxis string

const (
	// AxisWriters scales concurrent writer count.
	AxisWriters WorkerAxis = "writers"

	// AxisReaders scales concurrent reader count.
	AxisReaders WorkerAxis = "readers"
)

// ScalingPoint is one metric value at one worker count.
type ScalingPoint struct {
	WorkerCount int     `json:"worker_count"`
	Value       float64 `json:"value"`
}

// AdapterSeries is one run's independent latency CDF and throughput series,
// keyed by adapter for side-by-side comparison. Values from different runs
// are never blended; only the containing collection is grouped.
type AdapterSeries struct {
	Adapter string

	// Run is the source run, kept for report naming and summary display.
	Run *store.Run

	// CDF is nil when the run had no successful samples.
	CDF []CDFPoint

	// Series is nil when the run's time range was degenerate.
	Series *TimeSeries
}

// WorkerCount resolves a run's worker count: writers when any writer ran,
// otherwise readers. A run with neither is a no-worker baseline at count 0.
func WorkerCount(run *store.Run) int {
	if run.Writers > 0 {
		return run.Writers
	}
	return run.Readers
}

// GroupByWorkerCount groups runs by their resolved worker count.
//
// Outputs:
//   - map[int][]*store.Run: Runs per worker count, input order preserved
//     within each group.
func GroupByWorkerCount(runs []*store.Run) map[int][]*store.Run {
	return lo.GroupBy(runs, func(r *store.Run) int { return WorkerCount(r) })
}

// resolveAxis determines the concurrency axis of a scaling group from the
// first run with a nonzero worker count, and rejects groups that mix
// writer-scaled and reader-scaled runs or contain a run scaled on both axes.
// A group with only no-worker baselines defaults to the writer axis.
func resolveAxis(runs []*store.Run) (WorkerAxis, error) {
	axis := WorkerAxis("")
	for _, r := range runs {
		if r.Writers > 0 && r.Readers > 0 {
			return "", ErrMixedWorkerAxes
		}
		var runAxis WorkerAxis
		switch {
		case r.Writers > 0:
			runAxis = AxisWriters
		case r.Readers > 0:
			runAxis = AxisReaders
		default:
			continue // baseline, compatible with either axis
		}
		if axis == "" {
			axis = runAxis
		} else if axis != runAxis {
			return "", ErrMixedWorkerAxes
		}
	}
	if axis == "" {
		axis = AxisWriters
	}
	return axis, nil
}

// CompareRuns produces one independent AdapterSeries per run for
// side-by-side comparison within a group sharing a workload and worker
// count.
//
// Description:
//
//	Runs with no qualifying samples still yield an entry, with nil CDF
//	and/or Series; renderers skip those artifacts. No error is surfaced
//	because empty runs are a documented skip condition, not a failure.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func CompareRuns(runs []*store.Run, cfg *Config) []AdapterSeries {
	entries := make([]AdapterSeries, 0, len(runs))
	for _, r := range runs {
		entry := AdapterSeries{Adapter: r.Adapter, Run: r}
		if cdf, err := LatencyCDF(r.Samples); err == nil {
			entry.CDF = cdf
		}
		if ts, err := ThroughputSeries(r.Samples, cfg); err == nil {
			entry.Series = ts
		}
		entries = append(entries, entry)
	}
	return entries
}

// MedianWindowThroughput computes a robust scalar throughput estimate for
// one run, recomputed directly from samples rather than trusting the
// producer's summary value.
//
// Description:
//
//	Successful samples are resampled into fixed windows aligned to absolute
//	wall-clock time (not run-relative). Windows between the first and last
//	occupied window count as explicit zeros. When more than two windows
//	exist and edge trimming is enabled, the first and last window are
//	dropped to exclude partial warm-up/cool-down windows, a stricter and
//	independent trim from ThroughputSeries's complete-bucket rule. The
//	median (not mean) of the remaining per-window rates is returned, which
//	keeps transient stalls and bursts from dominating the estimate.
//
// Inputs:
//   - samples: A run's sample stream, in any order.
//   - cfg: Engine configuration. Nil uses DefaultConfig().
//
// Outputs:
//   - float64: Representative events/sec.
//   - error: ErrEmptySeries if no successful samples exist.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func MedianWindowThroughput(samples []store.Sample, cfg *Config) (float64, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	bin := int64(cfg.BinSizeMS)
	counts := make(map[int64]float64)
	for _, s := range samples {
		if !s.OK {
			continue
		}
		counts[floorDiv(s.TMS, bin)]++
	}
	if len(counts) == 0 {
		return 0, ErrEmptySeries
	}

	keys := lo.Keys(counts)
	minKey, maxKey := lo.Min(keys), lo.Max(keys)

	rates := make([]float64, 0, maxKey-minKey+1)
	factor := cfg.rateFactor()
	for k := minKey; k <= maxKey; k++ {
		rates = append(rates, counts[k]*factor)
	}
	if cfg.TrimEdges && len(rates) > 2 {
		rates = rates[1 : len(rates)-1]
	}
	return median(rates), nil
}

// ThroughputScaling aggregates runs for one adapter set across worker
// counts into one recomputed-throughput ScalingPoint per worker count.
//
// Description:
//
//	Each run contributes one point at its resolved worker count, keyed by
//	adapter. Duplicate worker counts within one adapter resolve last-write:
//	the later run in input order wins. Runs with no qualifying samples
//	contribute no point. Per-adapter sequences are unique per worker count
//	and sorted ascending before being returned.
//
// Outputs:
//   - map[string][]ScalingPoint: Sorted points per adapter.
//   - WorkerAxis: The axis the group scales on.
//   - error: ErrMixedWorkerAxes for ambiguous reader/writer mixtures.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func ThroughputScaling(runs []*store.Run, cfg *Config) (map[string][]ScalingPoint, WorkerAxis, error) {
	axis, err := resolveAxis(runs)
	if err != nil {
		return nil, "", err
	}

	values := make(map[string]map[int]float64)
	for _, r := range runs {
		eps, err := MedianWindowThroughput(r.Samples, cfg)
		if err != nil {
			continue
		}
		if values[r.Adapter] == nil {
			values[r.Adapter] = make(map[int]float64)
		}
		values[r.Adapter][WorkerCount(r)] = eps
	}
	return sortedScalingPoints(values), axis, nil
}

// P99Scaling aggregates runs into one p99-latency ScalingPoint per worker
// count per adapter.
//
// Description:
//
//	Unlike throughput scaling, p99 uses the run's precomputed summary value
//	directly; the producer's HDR histogram is more trustworthy for tail
//	percentiles than a recomputation from capped sample streams. Duplicate
//	worker counts resolve last-write, like ThroughputScaling.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func P99Scaling(runs []*store.Run) (map[string][]ScalingPoint, WorkerAxis, error) {
	axis, err := resolveAxis(runs)
	if err != nil {
		return nil, "", err
	}

	values := make(map[string]map[int]float64)
	for _, r := range runs {
		if values[r.Adapter] == nil {
			values[r.Adapter] = make(map[int]float64)
		}
		values[r.Adapter][WorkerCount(r)] = r.Latency.P99MS
	}
	return sortedScalingPoints(values), axis, nil
}

// sortedScalingPoints flattens per-adapter {workerCount: value} maps into
// ascending-sorted point sequences.
func sortedScalingPoints(values map[string]map[int]float64) map[string][]ScalingPoint {
	out := make(map[string][]ScalingPoint, len(values))
	for adapter, byCount := range values {
		counts := lo.Keys(byCount)
		sort.Ints(counts)
		out[adapter] = lo.Map(counts, func(wc int, _ int) ScalingPoint {
			return ScalingPoint{WorkerCount: wc, Value: byCount[wc]}
		})
	}
	return out
}

// median returns the middle value of values, averaging the two central
// values for even lengths. The input slice is not modified.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// floorDiv divides a by b rounding toward negative infinity, so pre-epoch
// timestamps still land in the correct absolute window.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
