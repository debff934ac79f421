// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics is the aggregation engine that turns raw benchmark
// telemetry into comparative performance series and scores.
//
// # Overview
//
// The engine converts one run's sample stream into an empirical latency CDF
// and a fixed-interval throughput series, combines runs across worker counts
// into scaling curves, and ranks adapters by a composite container-resource
// score. Rendering and templating are collaborators that consume the values
// produced here; this package computes, it never draws or formats.
//
// # Architecture
//
//	                 ┌───────────────┐
//	   store.Run ───▶│  LatencyCDF   │──▶ []CDFPoint
//	                 ├───────────────┤
//	   store.Run ───▶│ Throughput    │──▶ *TimeSeries (raw + smoothed)
//	                 │ Series        │
//	                 ├───────────────┤
//	   []store.Run ─▶│ CompareRuns   │──▶ []AdapterSeries (per adapter)
//	                 │ *Scaling      │──▶ map[adapter][]ScalingPoint
//	                 ├───────────────┤
//	   []store.Run ─▶│ RankResources │──▶ []CompositeScore
//	                 └───────────────┘
//
// # Determinism
//
// Every function here is a pure function of its inputs: no hidden state, no
// randomness, no mutation of the input runs. Recomputing any series from the
// same Run yields bit-identical output, and independent runs or groups may
// be processed concurrently.
//
// # Empty Inputs
//
// A run with zero qualifying samples, or a degenerate time range, yields
// ErrEmptySeries. That is a documented "skip this artifact" signal for
// callers, not a failure; only structurally invalid input is ever fatal, and
// that is caught upstream in the store package.
package metrics
