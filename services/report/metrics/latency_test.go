// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

func okSample(tms int64, latencyUS float64) store.Sample {
	return store.Sample{TMS: tms, OK: true, LatencyUS: latencyUS}
}

func failedSample(tms int64) store.Sample {
	return store.Sample{TMS: tms, OK: false}
}

func TestLatencyCDF(t *testing.T) {
	// 4000, 1000, 3000, 2000 us -> sorted 1, 2, 3, 4 ms.
	samples := []store.Sample{
		okSample(0, 4000),
		okSample(10, 1000),
		failedSample(20),
		okSample(30, 3000),
		okSample(40, 2000),
	}

	cdf, err := LatencyCDF(samples)
	if err != nil {
		t.Fatalf("LatencyCDF() error = %v", err)
	}
	if len(cdf) != 4 {
		t.Fatalf("len(cdf) = %d, want 4 (failed sample must be excluded)", len(cdf))
	}

	wantLat := []float64{1, 2, 3, 4}
	wantPct := []float64{0, 25, 50, 75}
	for i, p := range cdf {
		if math.Abs(p.LatencyMS-wantLat[i]) > 1e-9 {
			t.Errorf("cdf[%d].LatencyMS = %v, want %v", i, p.LatencyMS, wantLat[i])
		}
		if math.Abs(p.Percentile-wantPct[i]) > 1e-9 {
			t.Errorf("cdf[%d].Percentile = %v, want %v", i, p.Percentile, wantPct[i])
		}
	}
}

func TestLatencyCDFMonotonic(t *testing.T) {
	samples := []store.Sample{
		okSample(0, 900), okSample(1, 100), okSample(2, 5000),
		okSample(3, 100), okSample(4, 42), okSample(5, 77777),
	}

	cdf, err := LatencyCDF(samples)
	if err != nil {
		t.Fatalf("LatencyCDF() error = %v", err)
	}
	if cdf[0].Percentile != 0 {
		t.Errorf("first percentile = %v, want 0", cdf[0].Percentile)
	}
	last := cdf[len(cdf)-1]
	if last.Percentile >= 100 {
		t.Errorf("last percentile = %v, want < 100", last.Percentile)
	}
	for i := 1; i < len(cdf); i++ {
		if cdf[i].LatencyMS < cdf[i-1].LatencyMS {
			t.Errorf("latency decreased at %d: %v < %v", i, cdf[i].LatencyMS, cdf[i-1].LatencyMS)
		}
		if cdf[i].Percentile <= cdf[i-1].Percentile {
			t.Errorf("percentile did not increase at %d", i)
		}
	}
}

func TestLatencyCDFClampsToFloor(t *testing.T) {
	// 0us and 0.5us both clamp to the 1e-3 ms floor.
	samples := []store.Sample{okSample(0, 0), okSample(1, 0.5), okSample(2, 10)}

	cdf, err := LatencyCDF(samples)
	if err != nil {
		t.Fatalf("LatencyCDF() error = %v", err)
	}
	for _, p := range cdf {
		if p.LatencyMS < minLatencyMS {
			t.Errorf("LatencyMS = %v, want >= %v", p.LatencyMS, minLatencyMS)
		}
	}
	if cdf[0].LatencyMS != minLatencyMS || cdf[1].LatencyMS != minLatencyMS {
		t.Errorf("clamped values = %v, %v, want both %v", cdf[0].LatencyMS, cdf[1].LatencyMS, minLatencyMS)
	}
}

func TestLatencyCDFEmpty(t *testing.T) {
	tests := []struct {
		name    string
		samples []store.Sample
	}{
		{name: "no samples", samples: nil},
		{name: "only failures", samples: []store.Sample{failedSample(0), failedSample(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LatencyCDF(tt.samples)
			if !errors.Is(err, ErrEmptySeries) {
				t.Errorf("LatencyCDF() error = %v, want ErrEmptySeries", err)
			}
		})
	}
}

func TestLatencyCDFInputOrderIndependent(t *testing.T) {
	a := []store.Sample{okSample(0, 300), okSample(1, 100), okSample(2, 200)}
	b := []store.Sample{okSample(2, 200), okSample(0, 300), okSample(1, 100)}

	cdfA, err := LatencyCDF(a)
	if err != nil {
		t.Fatalf("LatencyCDF(a) error = %v", err)
	}
	cdfB, err := LatencyCDF(b)
	if err != nil {
		t.Fatalf("LatencyCDF(b) error = %v", err)
	}
	for i := range cdfA {
		if cdfA[i] != cdfB[i] {
			t.Errorf("cdf[%d] differs across input orders: %+v vs %+v", i, cdfA[i], cdfB[i])
		}
	}
}
