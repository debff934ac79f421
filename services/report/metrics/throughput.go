// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"math"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

// TimeSeries is a fixed-interval throughput series. The three slices are
// index-aligned and equal length.
type TimeSeries struct {
	// TimeS holds bucket-center times in seconds from run start.
	TimeS []float64 `json:"time_s"`

	// EPS holds the raw events/sec per complete bucket.
	EPS []float64 `json:"throughput_eps"`

	// EPSSmoothed holds the Gaussian-smoothed series. Smoothing is for
	// display and summary only and never shifts the time axis.
	EPSSmoothed []float64 `json:"throughput_eps_smooth"`
}

// Len returns the number of buckets in the series.
func (ts *TimeSeries) Len() int {
	return len(ts.TimeS)
}

// ThroughputSeries converts a run's samples into a fixed-interval rate
// series, raw and smoothed.
//
// Description:
//
//	Successful samples are assigned to fixed-width buckets relative to the
//	earliest successful timestamp. Only complete buckets are emitted:
//	samples falling into the trailing partial bucket are discarded so every
//	emitted rate covers a full time window. Buckets with no samples appear
//	as explicit zeros; the output has exactly
//	floor((t_max - t_min) / bin) entries with no gaps.
//
// Inputs:
//   - samples: A run's sample stream, in any order.
//   - cfg: Engine configuration. Nil uses DefaultConfig().
//
// Outputs:
//   - *TimeSeries: Equal-length, index-aligned series.
//   - error: ErrEmptySeries if no successful samples exist, the time range
//     is degenerate, or no complete bucket fits the range.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func ThroughputSeries(samples []store.Sample, cfg *Config) (*TimeSeries, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tMin, tMax := int64(math.MaxInt64), int64(math.MinInt64)
	okCount := 0
	for _, s := range samples {
		if !s.OK {
			continue
		}
		okCount++
		if s.TMS < tMin {
			tMin = s.TMS
		}
		if s.TMS > tMax {
			tMax = s.TMS
		}
	}
	if okCount == 0 || tMax-tMin <= 0 {
		return nil, ErrEmptySeries
	}

	bin := int64(cfg.BinSizeMS)
	numBins := (tMax - tMin) / bin
	if numBins == 0 {
		return nil, ErrEmptySeries
	}

	counts := make([]float64, numBins)
	for _, s := range samples {
		if !s.OK {
			continue
		}
		idx := (s.TMS - tMin) / bin
		if idx >= numBins {
			// Trailing partial bucket.
			continue
		}
		counts[idx]++
	}

	ts := &TimeSeries{
		TimeS: make([]float64, numBins),
		EPS:   make([]float64, numBins),
	}
	factor := cfg.rateFactor()
	for i := range counts {
		ts.TimeS[i] = (float64(i) + 0.5) * float64(cfg.BinSizeMS) / 1000.0
		ts.EPS[i] = counts[i] * factor
	}
	ts.EPSSmoothed = gaussianSmooth(ts.EPS, cfg.SmoothingSigma)
	return ts, nil
}

// gaussianSmooth convolves values with a Gaussian kernel of the given sigma
// (in sample units), reflecting values at both edges. Sigma <= 0 returns an
// unmodified copy.
func gaussianSmooth(values []float64, sigma float64) []float64 {
	out := make([]float64, len(values))
	if sigma <= 0 || len(values) == 0 {
		copy(out, values)
		return out
	}

	// Truncate the kernel at three standard deviations.
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	var kernelSum float64
	for k := -radius; k <= radius; k++ {
		w := math.Exp(-float64(k*k) / (2 * sigma * sigma))
		kernel[k+radius] = w
		kernelSum += w
	}
	for i := range kernel {
		kernel[i] /= kernelSum
	}

	n := len(values)
	for i := range values {
		var sum float64
		for k := -radius; k <= radius; k++ {
			sum += kernel[k+radius] * values[reflectIndex(i+k, n)]
		}
		out[i] = sum
	}
	return out
}

// reflectIndex maps an out-of-range index into [0, n) by mirroring at the
// boundaries (..., v[1], v[0] | v[0], v[1], ..., v[n-1] | v[n-1], ...).
func reflectIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
