// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

func TestThroughputSeries(t *testing.T) {
	// Bin 50ms. Two samples in bucket 0, one in bucket 1, one in the
	// trailing partial bucket (discarded): eps = [40, 20].
	samples := []store.Sample{
		okSample(1000, 10),
		okSample(1020, 10),
		okSample(1060, 10),
		okSample(1110, 10), // partial trailing bucket
		failedSample(1030), // failures never count
	}

	ts, err := ThroughputSeries(samples, DefaultConfig())
	if err != nil {
		t.Fatalf("ThroughputSeries() error = %v", err)
	}
	if ts.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ts.Len())
	}

	wantTime := []float64{0.025, 0.075}
	wantEPS := []float64{40, 20}
	for i := range wantEPS {
		if math.Abs(ts.TimeS[i]-wantTime[i]) > 1e-9 {
			t.Errorf("TimeS[%d] = %v, want %v", i, ts.TimeS[i], wantTime[i])
		}
		if math.Abs(ts.EPS[i]-wantEPS[i]) > 1e-9 {
			t.Errorf("EPS[%d] = %v, want %v", i, ts.EPS[i], wantEPS[i])
		}
	}
	if len(ts.EPSSmoothed) != ts.Len() {
		t.Errorf("len(EPSSmoothed) = %d, want %d", len(ts.EPSSmoothed), ts.Len())
	}
}

func TestThroughputSeriesExplicitZeros(t *testing.T) {
	// Buckets 0 and 2 occupied, bucket 1 empty; must appear as a zero, not
	// a gap.
	samples := []store.Sample{
		okSample(1000, 10),
		okSample(1100, 10),
		okSample(1150, 10), // closes the range; lands in the partial bucket
	}

	ts, err := ThroughputSeries(samples, DefaultConfig())
	if err != nil {
		t.Fatalf("ThroughputSeries() error = %v", err)
	}
	want := []float64{20, 0, 20}
	if ts.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", ts.Len(), len(want))
	}
	for i, w := range want {
		if math.Abs(ts.EPS[i]-w) > 1e-9 {
			t.Errorf("EPS[%d] = %v, want %v", i, ts.EPS[i], w)
		}
	}
}

func TestThroughputSeriesEmpty(t *testing.T) {
	tests := []struct {
		name    string
		samples []store.Sample
	}{
		{name: "no samples", samples: nil},
		{name: "only failures", samples: []store.Sample{failedSample(0), failedSample(100)}},
		{name: "single timestamp", samples: []store.Sample{okSample(500, 1), okSample(500, 1)}},
		{name: "range below one bin", samples: []store.Sample{okSample(500, 1), okSample(530, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ThroughputSeries(tt.samples, DefaultConfig())
			if !errors.Is(err, ErrEmptySeries) {
				t.Errorf("ThroughputSeries() error = %v, want ErrEmptySeries", err)
			}
		})
	}
}

func TestThroughputSeriesJSONFieldNames(t *testing.T) {
	samples := []store.Sample{okSample(0, 1), okSample(40, 1), okSample(60, 1)}
	ts, err := ThroughputSeries(samples, DefaultConfig())
	if err != nil {
		t.Fatalf("ThroughputSeries() error = %v", err)
	}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"time_s"`, `"throughput_eps"`, `"throughput_eps_smooth"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled series missing %s: %s", key, data)
		}
	}
}

func TestGaussianSmooth(t *testing.T) {
	t.Run("zero sigma copies input", func(t *testing.T) {
		in := []float64{1, 5, 2, 8}
		out := gaussianSmooth(in, 0)
		for i := range in {
			if out[i] != in[i] {
				t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
			}
		}
		out[0] = 99
		if in[0] == 99 {
			t.Error("gaussianSmooth aliased its input")
		}
	})

	t.Run("constant series is preserved", func(t *testing.T) {
		in := []float64{7, 7, 7, 7, 7, 7, 7, 7}
		out := gaussianSmooth(in, 2)
		for i, v := range out {
			if math.Abs(v-7) > 1e-9 {
				t.Errorf("out[%d] = %v, want 7 (normalized kernel with reflection)", i, v)
			}
		}
	})

	t.Run("spike is attenuated but mass-preserved", func(t *testing.T) {
		in := make([]float64, 21)
		in[10] = 100
		out := gaussianSmooth(in, 2)
		if out[10] >= 100 {
			t.Errorf("peak = %v, want attenuated below 100", out[10])
		}
		var sumIn, sumOut float64
		for i := range in {
			sumIn += in[i]
			sumOut += out[i]
		}
		if math.Abs(sumIn-sumOut) > 1e-6 {
			t.Errorf("total mass changed: %v -> %v", sumIn, sumOut)
		}
	})
}

func TestReflectIndex(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{i: 0, n: 5, want: 0},
		{i: 4, n: 5, want: 4},
		{i: -1, n: 5, want: 0},
		{i: -2, n: 5, want: 1},
		{i: 5, n: 5, want: 4},
		{i: 6, n: 5, want: 3},
		{i: -7, n: 3, want: 0},
	}
	for _, tt := range tests {
		if got := reflectIndex(tt.i, tt.n); got != tt.want {
			t.Errorf("reflectIndex(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}
