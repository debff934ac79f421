// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"sort"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

// minLatencyMS is the display-safety floor applied to latencies so a
// logarithmic axis stays well-defined downstream. It is not a statistical
// correction.
const minLatencyMS = 1e-3

// CDFPoint is one step of an empirical latency CDF.
type CDFPoint struct {
	// LatencyMS is the observed latency in milliseconds, clamped to
	// minLatencyMS.
	LatencyMS float64 `json:"latency_ms"`

	// Percentile is the cumulative percentile in [0, 100).
	Percentile float64 `json:"percentile"`
}

// LatencyCDF computes the empirical latency CDF of a run's samples.
//
// Description:
//
//	Successful samples are converted from microseconds to milliseconds,
//	clamped to minLatencyMS, and sorted ascending. Point i of n carries
//	percentile 100*i/n: a left-continuous step function, so the maximum
//	observation sits strictly below 100.
//
// Inputs:
//   - samples: A run's sample stream, in any order.
//
// Outputs:
//   - []CDFPoint: Non-decreasing in both latency and percentile; length
//     equals the count of successful samples.
//   - error: ErrEmptySeries if no successful samples exist.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func LatencyCDF(samples []store.Sample) ([]CDFPoint, error) {
	lat := make([]float64, 0, len(samples))
	for _, s := range samples {
		if !s.OK {
			continue
		}
		ms := s.LatencyUS / 1000.0
		if ms < minLatencyMS {
			ms = minLatencyMS
		}
		lat = append(lat, ms)
	}
	if len(lat) == 0 {
		return nil, ErrEmptySeries
	}
	sort.Float64s(lat)

	n := float64(len(lat))
	points := make([]CDFPoint, len(lat))
	for i, v := range lat {
		points[i] = CDFPoint{
			LatencyMS:  v,
			Percentile: 100.0 * float64(i) / n,
		}
	}
	return points, nil
}
